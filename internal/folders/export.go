// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package folders

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// readdirChunk is how many directory entries are read at once.
const readdirChunk = 128

// Export writes the names of the immediate subdirectories of dir to w as CSV
// with the single header field "old_name", one name per row, in the order the
// directory yields them. It returns the number of rows written, not counting
// the header.
//
// Entries that cannot be examined are skipped. Symbolic links to directories
// are listed. Names that are not valid UTF-8 are converted lossily.
func Export(fsys afero.Fs, dir string, w io.Writer) (int, error) {
	if err := CheckDir(fsys, dir); err != nil {
		return 0, err
	}

	f, err := fsys.Open(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	defer f.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{HeaderOldName}); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	var n int
	for {
		names, err := f.Readdirnames(readdirChunk)
		for _, name := range names {
			if !isDir(fsys, filepath.Join(dir, name)) {
				continue
			}
			if err := cw.Write([]string{displayName(name)}); err != nil {
				return n, fmt.Errorf("failed to write CSV row: %w", err)
			}
			n++
		}
		// io.EOF ends the listing; any other error ends it early, keeping
		// what was listed so far.
		if err != nil || len(names) == 0 {
			break
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return n, nil
}

func displayName(name string) string {
	return strings.ToValidUTF8(name, "\uFFFD")
}
