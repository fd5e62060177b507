// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package folders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Snapshot returns an in-memory filesystem that mirrors the immediate children
// of dir on fsys at the same path: directories become empty directories and
// everything else becomes an empty file. Running [Import] against the snapshot
// shows what a real import would do, including the effect of earlier rows on
// later ones, without touching fsys.
//
// Paths named by recs that reach outside the top level (such as "sub/inner"
// or "../moved") are mirrored too, together with their parent directories, as
// they are before the import. Like [Export], a listing error keeps the names
// read so far.
func Snapshot(fsys afero.Fs, dir string, recs ...Record) (afero.Fs, error) {
	if err := CheckDir(fsys, dir); err != nil {
		return nil, err
	}

	f, err := fsys.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	defer f.Close()
	// Best effort: entries listed before an error are still mirrored.
	names, _ := f.Readdirnames(-1)

	mem := &snapshotFs{afero.NewMemMapFs()}
	if err := mem.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := mirror(fsys, mem, filepath.Join(dir, name)); err != nil {
			return nil, err
		}
	}
	for _, rec := range recs {
		if rec.OldName == "" || rec.NewName == "" {
			continue
		}
		for _, path := range []string{filepath.Join(dir, rec.OldName), filepath.Join(dir, rec.NewName)} {
			if err := mirror(fsys, mem, path); err != nil {
				return nil, err
			}
		}
	}
	return mem, nil
}

// mirror copies the type of the entry at path from fsys into mem. If path
// doesn't exist, only its parent directory is mirrored, when there is one.
func mirror(fsys, mem afero.Fs, path string) error {
	fi, err := fsys.Stat(path)
	if err != nil {
		// Dangling symlinks and the like don't count as existing.
		if parent := filepath.Dir(path); isDir(fsys, parent) {
			return mem.MkdirAll(parent, 0o755)
		}
		return nil
	}
	if fi.IsDir() {
		return mem.MkdirAll(path, 0o755)
	}
	if ok, _ := exists(mem, path); ok {
		return nil
	}
	if err := mem.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(mem, path, nil, 0o644)
}

// snapshotFs fails renames into a missing directory, as the OS does.
type snapshotFs struct {
	afero.Fs
}

func (s *snapshotFs) Rename(oldname, newname string) error {
	if !isDir(s.Fs, filepath.Dir(newname)) {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: fs.ErrNotExist}
	}
	return s.Fs.Rename(oldname, newname)
}

// ErrPlanConflict indicates that a rehearsed import would skip or fail at
// least one row.
var ErrPlanConflict = errors.New("not every row can be applied")

// Rehearse runs [Import] against a [Snapshot] of dir that includes every path
// named in r. fsys is only read.
func Rehearse(ctx context.Context, fsys afero.Fs, dir string, r io.Reader, opts *Options) (Summary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	// A bad header is reported by Import below.
	recs, _ := Records(bytes.NewReader(data))
	mem, err := Snapshot(fsys, dir, recs...)
	if err != nil {
		return Summary{}, err
	}
	return Import(ctx, mem, dir, bytes.NewReader(data), opts)
}
