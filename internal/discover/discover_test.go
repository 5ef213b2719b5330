package discover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/FollowTheProcess/pyfind/internal/locate"
	"github.com/FollowTheProcess/pyfind/internal/pyspec"
	"github.com/stretchr/testify/require"
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
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func mustSpec(t *testing.T, s string) pyspec.PythonSpec {
	t.Helper()
	spec, err := pyspec.FromString(s)
	require.NoError(t, err)
	return spec
}

func TestDiscover_FindsMatchOnPath(t *testing.T) {
	dir := t.TempDir()
	writeFakeInterpreter(t, dir, "python3.11", 11)
	want := writeFakeInterpreter(t, dir, "python3.12", 12)

	d := New(nil, nil)
	req := Request{
		Specs: []pyspec.PythonSpec{mustSpec(t, "python3.12")},
		Env:   locate.Env{"PATH": dir},
	}

	info, ok, err := d.Discover(context.Background(), req)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, info.Executable)
}

func TestDiscover_FallsThroughSpecsInOrder(t *testing.T) {
	dir := t.TempDir()
	want := writeFakeInterpreter(t, dir, "python3.10", 10)

	d := New(nil, nil)
	req := Request{
		Specs: []pyspec.PythonSpec{
			mustSpec(t, "python3.12"), // no candidate on PATH
			mustSpec(t, "python3.10"), // satisfied
		},
		Env: locate.Env{"PATH": dir},
	}

	info, ok, err := d.Discover(context.Background(), req)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, info.Executable)
}

func TestDiscover_NoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFakeInterpreter(t, dir, "python3.9", 9)

	d := New(nil, nil)
	req := Request{
		Specs: []pyspec.PythonSpec{mustSpec(t, "python3.12")},
		Env:   locate.Env{"PATH": dir},
	}

	info, ok, err := d.Discover(context.Background(), req)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, info)
}

func TestDiscover_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFakeInterpreter(t, dir, "python3.12", 12)

	d := New(nil, nil)
	req := Request{
		Specs: []pyspec.PythonSpec{mustSpec(t, "python3.12")},
		Env:   locate.Env{"PATH": dir},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := d.Discover(ctx, req)
	require.Error(t, err)
}
