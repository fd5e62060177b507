// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package folders

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.astrophena.name/foldercsv/internal/logger"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidHeader is returned by [Import] when the first CSV row is not
// "old_name,new_name".
var ErrInvalidHeader = errors.New("invalid CSV headers, expected: old_name,new_name")

// Reasons for skipping a row, wrapped by [RowError].
var (
	ErrEmptyName     = errors.New("empty old_name or new_name")
	ErrSourceMissing = errors.New("source folder does not exist")
	ErrTargetExists  = errors.New("target already exists")
)

// ErrInvalidUTF8 is reported for rows that contain bytes that are not UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Record is one parsed row of an import CSV.
type Record struct {
	OldName string
	NewName string
}

// Operations reported by [RowError].
const (
	OpRead   = "read"   // the row could not be parsed
	OpSkip   = "skip"   // the row was valid CSV but could not be applied
	OpStat   = "stat"   // the target could not be examined
	OpRename = "rename" // the rename itself failed
)

// RowError describes why a single row was not applied.
type RowError struct {
	Op     string
	Line   int    // 1-based, the header is line 1
	Path   string // offending path, if any
	Record Record
	Err    error
}

func (e *RowError) Error() string {
	switch e.Op {
	case OpRead:
		return fmt.Sprintf("failed to read CSV row %d: %v", e.Line, e.Err)
	case OpRename:
		return fmt.Sprintf("failed to rename row %d (%s -> %s): %v", e.Line, e.Record.OldName, e.Record.NewName, e.Err)
	case OpStat:
		return fmt.Sprintf("failed to check row %d target %s: %v", e.Line, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("skipping row %d: %v: %s", e.Line, e.Err, e.Path)
	}
	return fmt.Sprintf("skipping row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Skipped reports whether the row was deliberately left alone rather than
// failing.
func (e *RowError) Skipped() bool { return e.Op == OpSkip }

// Summary counts what happened during an import.
type Summary struct {
	Rows    int
	Renamed int
	Skipped int
	Failed  int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d rows: %d renamed, %d skipped, %d failed.", s.Rows, s.Renamed, s.Skipped, s.Failed)
}

// Clean reports whether every row was applied.
func (s Summary) Clean() bool { return s.Skipped == 0 && s.Failed == 0 }

// Options configure [Import]. The zero value is ready to use.
type Options struct {
	// Logf receives one line for every row that was skipped or failed.
	Logf logger.Logf
	// Renamed is called after every successful rename.
	Renamed func(oldName, newName string)
}

func (o *Options) logf() logger.Logf {
	if o == nil || o.Logf == nil {
		return logger.Discard
	}
	return o.Logf
}

func (o *Options) renamed(oldName, newName string) {
	if o != nil && o.Renamed != nil {
		o.Renamed(oldName, newName)
	}
}

// Import reads rename records from r and renames the matching immediate
// children of dir, one row at a time.
//
// It returns an error only if dir is not a directory, the header is missing or
// wrong, reading r fails, or ctx is canceled. Problems with individual rows,
// including malformed CSV and invalid UTF-8, are passed to opts.Logf and
// counted in the returned [Summary].
func Import(ctx context.Context, fsys afero.Fs, dir string, r io.Reader, opts *Options) (Summary, error) {
	var sum Summary
	if err := CheckDir(fsys, dir); err != nil {
		return sum, err
	}

	cr, err := openCSV(r)
	if err != nil {
		return sum, err
	}

	logf := opts.logf()
	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !isParseError(err) {
			return sum, fmt.Errorf("failed to read CSV: %w", err)
		}
		sum.Rows++
		line := index + 2

		if err == nil && !validUTF8(fields) {
			err = ErrInvalidUTF8
		}
		if err != nil {
			sum.Failed++
			logf("%v", &RowError{Op: OpRead, Line: line, Err: err})
			continue
		}

		rec := parseRecord(fields)
		if err := apply(fsys, dir, line, rec); err != nil {
			if err.Skipped() {
				sum.Skipped++
			} else {
				sum.Failed++
			}
			logf("%v", err)
			continue
		}
		sum.Renamed++
		opts.renamed(rec.OldName, rec.NewName)
	}

	return sum, nil
}

// Records returns the rows of an import CSV that parse, in order, without
// applying them. Malformed rows are left out.
func Records(r io.Reader) ([]Record, error) {
	cr, err := openCSV(r)
	if err != nil {
		return nil, err
	}
	var recs []Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil && !isParseError(err) {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if err != nil || !validUTF8(fields) {
			continue
		}
		recs = append(recs, parseRecord(fields))
	}
}

// openCSV returns a CSV reader for r positioned after a valid header.
func openCSV(r io.Reader) (*csv.Reader, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrInvalidHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	if !validHeader(header) {
		return nil, ErrInvalidHeader
	}
	return cr, nil
}

// newReader returns a CSV reader for r that drops a leading byte order mark
// and tolerates rows of any length. Input without a UTF-16 byte order mark is
// passed through as is, so invalid UTF-8 reaches validUTF8.
func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	cr.FieldsPerRecord = -1
	return cr
}

// isParseError reports whether err only concerns the current record, so
// reading can go on with the next one.
func isParseError(err error) bool {
	var perr *csv.ParseError
	return errors.As(err, &perr)
}

func validUTF8(fields []string) bool {
	for _, f := range fields {
		if !utf8.ValidString(f) {
			return false
		}
	}
	return true
}

func validHeader(header []string) bool {
	return len(header) >= 2 && header[0] == HeaderOldName && header[1] == HeaderNewName
}

func parseRecord(fields []string) Record {
	field := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}
	return Record{OldName: field(0), NewName: field(1)}
}

func apply(fsys afero.Fs, dir string, line int, rec Record) *RowError {
	if rec.OldName == "" || rec.NewName == "" {
		return &RowError{Op: OpSkip, Line: line, Record: rec, Err: ErrEmptyName}
	}

	var (
		oldPath = filepath.Join(dir, rec.OldName)
		newPath = filepath.Join(dir, rec.NewName)
	)

	if !isDir(fsys, oldPath) {
		return &RowError{Op: OpSkip, Line: line, Path: oldPath, Record: rec, Err: ErrSourceMissing}
	}

	// Never overwrite.
	taken, err := exists(fsys, newPath)
	if err != nil {
		return &RowError{Op: OpStat, Line: line, Path: newPath, Record: rec, Err: err}
	}
	if taken {
		return &RowError{Op: OpSkip, Line: line, Path: newPath, Record: rec, Err: ErrTargetExists}
	}

	if err := fsys.Rename(oldPath, newPath); err != nil {
		return &RowError{Op: OpRename, Line: line, Path: oldPath, Record: rec, Err: err}
	}
	return nil
}
