// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package folders

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// Resolve returns path as an absolute path. Absolute paths are returned
// unchanged, relative ones are joined to the directory returned by getwd
// (usually [os.Getwd]).
func Resolve(getwd func() (string, error), path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	wd, err := getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return filepath.Join(wd, path), nil
}

// NotDirError is returned when a path that must be a directory is missing or
// is something else.
type NotDirError struct {
	Path string
	Err  error // error from stat, nil if the path exists but is not a directory
}

func (e *NotDirError) Error() string { return "not a valid directory: " + e.Path }
func (e *NotDirError) Unwrap() error { return e.Err }

// NotFileError is returned when a path that must be a regular file is missing
// or is something else.
type NotFileError struct {
	Path string
	Err  error // error from stat, nil if the path exists but is not a regular file
}

func (e *NotFileError) Error() string { return "not a valid CSV file: " + e.Path }
func (e *NotFileError) Unwrap() error { return e.Err }

// CheckDir reports a [*NotDirError] unless path is an existing directory.
// Symbolic links are followed.
func CheckDir(fsys afero.Fs, path string) error {
	fi, err := fsys.Stat(path)
	if err != nil {
		return &NotDirError{Path: path, Err: err}
	}
	if !fi.IsDir() {
		return &NotDirError{Path: path}
	}
	return nil
}

// CheckFile reports a [*NotFileError] unless path is an existing regular file.
// Symbolic links are followed.
func CheckFile(fsys afero.Fs, path string) error {
	fi, err := fsys.Stat(path)
	if err != nil {
		return &NotFileError{Path: path, Err: err}
	}
	if !fi.Mode().IsRegular() {
		return &NotFileError{Path: path}
	}
	return nil
}

// isDir reports whether path exists and is a directory.
func isDir(fsys afero.Fs, path string) bool {
	fi, err := fsys.Stat(path)
	return err == nil && fi.IsDir()
}

// exists reports whether something exists at path. It returns an error only
// when that cannot be determined.
func exists(fsys afero.Fs, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
