package pyfind

import (
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

func TestGetInterpreter(t *testing.T) {
	dir := t.TempDir()
	want := writeFakeInterpreter(t, dir, "python3.12", 12)
	writeFakeInterpreter(t, dir, "python3.9", 9)

	spec, err := FromString("python3.12")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}

	info, ok, err := GetInterpreter(
		context.Background(),
		[]Spec{spec},
		WithEnv(map[string]string{"PATH": dir}),
		WithNoCache(),
	)
	if err != nil {
		t.Fatalf("GetInterpreter: %v", err)
	}
	if !ok {
		t.Fatal("expected a match, got none")
	}
	if info.Executable != want {
		t.Errorf("got executable %s, want %s", info.Executable, want)
	}
}

func TestGetInterpreter_NoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFakeInterpreter(t, dir, "python3.9", 9)

	spec, err := FromString("python3.12")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}

	_, ok, err := GetInterpreter(
		context.Background(),
		[]Spec{spec},
		WithEnv(map[string]string{"PATH": dir}),
		WithNoCache(),
	)
	if err != nil {
		t.Fatalf("GetInterpreter: %v", err)
	}
	if ok {
		t.Fatal("expected no match")
	}
}

func TestCurrentSystem_DefaultEnvVar(t *testing.T) {
	dir := t.TempDir()
	want := writeFakeInterpreter(t, dir, "python3.12", 12)

	info, ok, err := CurrentSystem(
		context.Background(),
		WithEnv(map[string]string{defaultPythonEnvVar: want}),
		WithNoCache(),
	)
	if err != nil {
		t.Fatalf("CurrentSystem: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if info.Executable != want {
		t.Errorf("got executable %s, want %s", info.Executable, want)
	}
}

func TestListInterpreters(t *testing.T) {
	dir312 := t.TempDir()
	dir39 := t.TempDir()
	writeFakeInterpreter(t, dir312, "python3", 12)
	writeFakeInterpreter(t, dir39, "python3", 9)

	spec, err := FromString("python3")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}

	found, err := ListInterpreters(
		context.Background(),
		spec,
		WithEnv(map[string]string{"PATH": dir312 + string(os.PathListSeparator) + dir39}),
		WithNoCache(),
	)
	if err != nil {
		t.Fatalf("ListInterpreters: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("got %d interpreters, want 2: %+v", len(found), found)
	}
}
