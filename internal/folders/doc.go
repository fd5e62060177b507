// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package folders exports the names of the immediate subdirectories of a
// directory to CSV and renames them according to an edited copy of that CSV.
//
// The export format is a single column with the header "old_name". The import
// format has the header "old_name,new_name"; further columns are ignored.
//
// Import applies rows strictly in order and never overwrites anything. A row
// that cannot be applied is reported and skipped, and processing continues
// with the next row. Rows already applied are not rolled back, so a row may
// refer to a name that an earlier row renamed away.
//
// All functions work on an [afero.Fs], which lets callers rehearse an import
// against an in-memory [Snapshot] of the directory.
package folders

// CSV header fields.
const (
	HeaderOldName = "old_name"
	HeaderNewName = "new_name"
)
