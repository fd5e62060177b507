// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Foldercsv renames many directories at once through a CSV file.

# Usage

	$ foldercsv [flags...] export <directory_path> [output_csv]
	$ foldercsv [flags...] import <directory_path> <input_csv>

Export writes the names of the immediate subdirectories of directory_path to
output_csv (folders.csv in the current directory by default) under the single
header old_name. Files and nested directories are not listed.

Add a new_name column to the file and fill it in, then run import. Rows are
applied from top to bottom. A row is skipped, with a message on standard
error, when either name is empty, the source folder does not exist or the
target name is already taken; nothing is ever overwritten. Skipped rows don't
stop the import and don't change the exit status.

Because rows are applied in order, a row can refer to a name that an earlier
row renamed away. To swap two names, go through a temporary one:

	old_name,new_name
	left,tmp
	right,left
	tmp,right

With -dry, export prints the CSV instead of writing it and import only reports
what it would rename. With -strict, import first rehearses the whole file and
renames nothing unless every row can be applied.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/foldercsv/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
