// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package atomicio provides atomic file writing.
package atomicio

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFile streams the output of write into name on fsys. The data goes to a
// temporary file in the same directory first and is moved into place only
// after write returns without error, so readers never observe a partially
// written file and a failed write leaves an existing file untouched.
func WriteFile(fsys afero.Fs, name string, perm fs.FileMode, write func(io.Writer) error) (err error) {
	// Same directory means same filesystem, a requirement for an atomic rename.
	f, err := afero.TempFile(fsys, filepath.Dir(name), "."+filepath.Base(name)+".tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			fsys.Remove(tmp)
		}
	}()

	if err := write(f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := fsys.Chmod(tmp, perm); err != nil {
		return err
	}

	if fi, err := fsys.Stat(name); err == nil && fi.IsDir() {
		return &fs.PathError{Op: "write", Path: name, Err: errIsDir}
	}

	return fsys.Rename(tmp, name)
}

var errIsDir = errors.New("is a directory")
