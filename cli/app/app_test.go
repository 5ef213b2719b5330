package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const docFmt = `{
	"implementation": "cpython",
	"version_info": {"major": 3, "minor": %d, "micro": 0, "releaselevel": "final", "serial": 0},
	"architecture": 64,
	"platform": "linux",
	"machine": "x86_64",
	"free_threaded": false,
	"executable": "%s",
	"system_executable": "%s",
	"sysconfig_vars": {},
	"sysconfig_paths": {}
}`

func writeFakeInterpreter(t *testing.T, dir, name string, minor int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	doc := fmt.Sprintf(docFmt, minor, path, path)
	script := "#!/bin/sh\necho '" + doc + "'\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApp_Find(t *testing.T) {
	dir := t.TempDir()
	want := writeFakeInterpreter(t, dir, "python3.12", 12)
	t.Setenv("PATH", dir)

	out := &bytes.Buffer{}
	a := &App{Out: out, ErrOut: &bytes.Buffer{}}

	if err := a.Find(context.Background(), []string{"python3.12"}, nil); err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	got := out.String()
	wantLine := want + "\n"
	if got != wantLine {
		t.Errorf("Find() wrote %q, want %q", got, wantLine)
	}
}

func TestApp_Find_NoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFakeInterpreter(t, dir, "python3.9", 9)
	t.Setenv("PATH", dir)

	a := New()
	err := a.Find(context.Background(), []string{"python3.12"}, nil)
	if err == nil {
		t.Fatal("expected an error when nothing matches")
	}
}

func TestApp_List(t *testing.T) {
	dir := t.TempDir()
	writeFakeInterpreter(t, dir, "python3.12", 12)
	writeFakeInterpreter(t, dir, "python3.9", 9)
	t.Setenv("PATH", dir)

	out := &bytes.Buffer{}
	a := &App{Out: out, ErrOut: &bytes.Buffer{}}

	if err := a.List(context.Background(), nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if out.Len() == 0 {
		t.Error("expected List() to write output, got none")
	}
}
