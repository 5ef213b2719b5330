// Package cache implements the on-disk, cross-process-safe
// content-addressed store described in the design: one JSON document
// per interpreter path, keyed by a SHA-256 digest of the absolutized,
// case-normalized path, with a sibling lockfile for advisory
// cross-process locking.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/FollowTheProcess/pyfind/internal/pyinfo"
	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	homedir "github.com/mitchellh/go-homedir"
)

// Cache is a pluggable probe-result store: anything offering EntryFor
// and Clear satisfies it, no inheritance required.
type Cache interface {
	EntryFor(path string) (ContentStore, error)
	Clear() error
}

// ContentStore is a handle scoped to one interpreter path.
type ContentStore interface {
	Exists() bool
	Read() (pyinfo.InterpreterInfo, bool, error)
	Write(info pyinfo.InterpreterInfo) error
	Remove() error
	ScopedLock() (Unlock, error)
}

// Unlock releases a lock acquired by ScopedLock. It is safe to call
// exactly once; callers should defer it immediately after acquiring
// the lock so it runs on every exit path, including failure.
type Unlock func() error

// Disk is the default, filesystem-backed Cache implementation.
type Disk struct {
	root string // <root>/py_info/<schema>
}

// NewDisk builds a Disk cache rooted at root/py_info/<schema>. An
// empty root resolves via XDG_CACHE_HOME (falling back to the user's
// home directory), following the pattern the pack's adrg/xdg-using
// tools use for a per-user cache location.
func NewDisk(root string) (*Disk, error) {
	if root == "" {
		resolved, err := defaultCacheRoot()
		if err != nil {
			return nil, err
		}
		root = resolved
	}
	dir := filepath.Join(root, "py_info", strconv.Itoa(pyinfo.SchemaVersion))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache root %s: %w", dir, err)
	}
	return &Disk{root: dir}, nil
}

func defaultCacheRoot() (string, error) {
	if dir, err := xdg.CacheFile("pyfind"); err == nil {
		return filepath.Dir(dir), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve cache root: %w", err)
	}
	return filepath.Join(home, ".cache", "pyfind"), nil
}

// EntryFor returns a handle for the given interpreter path.
func (d *Disk) EntryFor(path string) (ContentStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolutize %s: %w", path, err)
	}
	digest := digestPath(abs)
	return &diskEntry{
		path:    abs,
		dataPth: filepath.Join(d.root, digest+".json"),
		lockPth: filepath.Join(d.root, digest+".lock"),
	}, nil
}

// Clear removes every cached entry.
func (d *Disk) Clear() error {
	if err := os.RemoveAll(d.root); err != nil {
		return fmt.Errorf("clear cache at %s: %w", d.root, err)
	}
	return os.MkdirAll(d.root, 0o755)
}

func digestPath(path string) string {
	normalized := path
	if runtime.GOOS == "windows" {
		normalized = strings.ToLower(path)
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

type diskEntry struct {
	path    string
	dataPth string
	lockPth string
}

func (e *diskEntry) Exists() bool {
	_, err := os.Stat(e.dataPth)
	return err == nil
}

// Read returns the stored record, or (zero, false, nil) if absent or
// stale. A stale entry (mtime/size mismatch against the live
// executable) is removed under lock before returning.
func (e *diskEntry) Read() (pyinfo.InterpreterInfo, bool, error) {
	data, err := os.ReadFile(e.dataPth)
	if errors.Is(err, os.ErrNotExist) {
		return pyinfo.InterpreterInfo{}, false, nil
	}
	if err != nil {
		return pyinfo.InterpreterInfo{}, false, fmt.Errorf("read cache entry %s: %w", e.dataPth, err)
	}

	info, err := pyinfo.Decode(data)
	if err != nil {
		// Malformed or schema-stale: treat as absent, same as a
		// failed validity check, and clean it up.
		_ = e.Remove()
		return pyinfo.InterpreterInfo{}, false, nil
	}

	valid, err := e.isValid(info)
	if err != nil {
		return pyinfo.InterpreterInfo{}, false, err
	}
	if !valid {
		if err := e.Remove(); err != nil {
			return pyinfo.InterpreterInfo{}, false, err
		}
		return pyinfo.InterpreterInfo{}, false, nil
	}

	return info, true, nil
}

func (e *diskEntry) isValid(info pyinfo.InterpreterInfo) (bool, error) {
	fi, err := os.Stat(e.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", e.path, err)
	}
	return fi.ModTime().Unix() == info.Mtime && fi.Size() == info.Size, nil
}

// Write atomically stores info: write to a temp sibling, then rename
// into place, all while the caller holds the path's lock.
func (e *diskEntry) Write(info pyinfo.InterpreterInfo) error {
	data, err := pyinfo.Encode(info)
	if err != nil {
		return err
	}

	tmp := e.dataPth + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp cache entry %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, e.dataPth); err != nil {
		return fmt.Errorf("rename cache entry into place %s: %w", e.dataPth, err)
	}
	return nil
}

func (e *diskEntry) Remove() error {
	if err := os.Remove(e.dataPth); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cache entry %s: %w", e.dataPth, err)
	}
	return nil
}

// ScopedLock acquires an exclusive, cross-process lock on this
// path's cache entry. The returned Unlock is guaranteed safe to call
// on every exit path, including panics recovered upstream, since
// flock.Unlock is idempotent-safe against an already-released lock.
func (e *diskEntry) ScopedLock() (Unlock, error) {
	lock := flock.New(e.lockPth)
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", e.lockPth, err)
	}
	return func() error {
		if err := lock.Unlock(); err != nil {
			return fmt.Errorf("release lock %s: %w", e.lockPth, err)
		}
		return nil
	}, nil
}
