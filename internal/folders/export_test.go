// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package folders

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.astrophena.name/foldercsv/internal/logger"
	"go.astrophena.name/foldercsv/internal/testutil"

	"github.com/spf13/afero"
)

// readExport parses exported CSV and returns the header and the sorted rows.
func readExport(t *testing.T, b []byte) (header []string, rows []string) {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 {
		t.Fatal("no header")
	}
	for _, rec := range records[1:] {
		if len(rec) != 1 {
			t.Fatalf("want one column, got %q", rec)
		}
		rows = append(rows, rec[0])
	}
	slices.Sort(rows)
	return records[0], rows
}

func TestExport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MakeDirs(t, dir, "a", "b", "c", "c/nested", "with,comma", `with "quotes"`)
	if err := os.WriteFile(filepath.Join(dir, "x"), []byte("file"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := Export(afero.NewOsFs(), dir, &buf)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, n, 5)

	header, rows := readExport(t, buf.Bytes())
	testutil.AssertEqual(t, header, []string{"old_name"})
	testutil.AssertEqual(t, rows, []string{"a", "b", "c", `with "quotes"`, "with,comma"})
}

func TestExportEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := Export(afero.NewOsFs(), t.TempDir(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, n, 0)
	testutil.AssertEqual(t, buf.String(), "old_name\n")
}

func TestExportSymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := t.TempDir()
	if err := os.Symlink(target, filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "nowhere"), filepath.Join(dir, "dangling")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := Export(afero.NewOsFs(), dir, &buf); err != nil {
		t.Fatal(err)
	}
	_, rows := readExport(t, buf.Bytes())
	testutil.AssertEqual(t, rows, []string{"link"})
}

func TestExportManyEntries(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	var want []string
	for i := range 3*readdirChunk + 7 {
		name := fmt.Sprintf("dir%04d", i)
		if err := fsys.MkdirAll(filepath.Join("/root", name), 0o755); err != nil {
			t.Fatal(err)
		}
		want = append(want, name)
		if err := afero.WriteFile(fsys, filepath.Join("/root", name+".txt"), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	n, err := Export(fsys, "/root", &buf)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, n, len(want))
	_, rows := readExport(t, buf.Bytes())
	testutil.AssertEqual(t, rows, want)
}

func TestExportNotDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cases := map[string]struct {
		path         string
		wantNotExist bool
	}{
		"missing": {path: filepath.Join(dir, "missing"), wantNotExist: true},
		"file":    {path: file},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			_, err := Export(afero.NewOsFs(), tc.path, &buf)
			var nde *NotDirError
			if !errors.As(err, &nde) {
				t.Fatalf("want *NotDirError, got %v", err)
			}
			testutil.AssertEqual(t, errors.Is(err, fs.ErrNotExist), tc.wantNotExist)
			testutil.AssertEqual(t, err.Error(), "not a valid directory: "+tc.path)
			testutil.AssertEqual(t, buf.Len(), 0)
		})
	}
}

type failingWriter struct{}

var errWrite = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestExportWriteError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MakeDirs(t, dir, "a")
	_, err := Export(afero.NewOsFs(), dir, failingWriter{})
	if !errors.Is(err, errWrite) {
		t.Fatalf("want %v, got %v", errWrite, err)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	testutil.AssertEqual(t, displayName("plain"), "plain")
	testutil.AssertEqual(t, displayName("bad\xffname"), "bad\uFFFDname")
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MakeDirs(t, dir, "a", "b", "c")
	if err := os.WriteFile(filepath.Join(dir, "x"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	before := testutil.ListDir(t, dir)

	var buf bytes.Buffer
	if _, err := Export(afero.NewOsFs(), dir, &buf); err != nil {
		t.Fatal(err)
	}

	// An export has no new_name column, so it can't be imported as is.
	if _, err := Import(context.Background(), afero.NewOsFs(), dir, bytes.NewReader(buf.Bytes()), nil); !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("want %v, got %v", ErrInvalidHeader, err)
	}

	// Rename every folder to itself.
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	lines[0] = "old_name,new_name"
	for i := 1; i < len(lines); i++ {
		lines[i] += "," + lines[i]
	}

	var log logger.Recorder
	sum, err := Import(context.Background(), afero.NewOsFs(), dir, strings.NewReader(strings.Join(lines, "\n")), &Options{Logf: log.Logf})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, sum, Summary{Rows: 3, Skipped: 3})
	for _, line := range log.Lines() {
		if !strings.Contains(line, "target already exists") {
			t.Errorf("unexpected log line: %q", line)
		}
	}
	testutil.AssertEqual(t, testutil.ListDir(t, dir), before)
}
