// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"go.astrophena.name/foldercsv/internal/atomicio"
	"go.astrophena.name/foldercsv/internal/cli"
	"go.astrophena.name/foldercsv/internal/cli/restrict"
	"go.astrophena.name/foldercsv/internal/folders"
	"go.astrophena.name/foldercsv/internal/logger"

	"github.com/landlock-lsm/go-landlock/landlock"
	"github.com/spf13/afero"
)

func main() { cli.Main(new(app)) }

const (
	exportUsage = "Usage: foldercsv export <directory_path> [output_csv]"
	importUsage = "Usage: foldercsv import <directory_path> <input_csv>"

	defaultOutput = "folders.csv"
)

type app struct {
	dry    bool
	strict bool

	fsys afero.Fs // nil means the OS filesystem
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.dry, "dry", false, "Print what would be done, but don't write or rename anything.")
	fs.BoolVar(&a.strict, "strict", false, "Import only if every row can be applied.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if a.fsys == nil {
		a.fsys = afero.NewOsFs()
	}

	if len(env.Args) == 0 {
		return usageError(env, "missing command")
	}

	cmd, args := env.Args[0], env.Args[1:]
	switch cmd {
	case "export":
		if len(args) < 1 || len(args) > 2 {
			return usageError(env, "export takes a directory and an optional output file")
		}
		out := defaultOutput
		if len(args) == 2 {
			out = args[1]
		}
		return a.export(ctx, args[0], out)
	case "import":
		if len(args) != 2 {
			return usageError(env, "import takes a directory and an input file")
		}
		return a.importCSV(ctx, args[0], args[1])
	default:
		return usageError(env, "unknown command %q", cmd)
	}
}

func usageError(env *cli.Env, format string, args ...any) error {
	fmt.Fprintln(env.Stderr, exportUsage)
	fmt.Fprintln(env.Stderr, importUsage)
	return fmt.Errorf("%w: %s", cli.ErrInvalidArgs, fmt.Sprintf(format, args...))
}

func (a *app) export(ctx context.Context, dirArg, outArg string) error {
	env := cli.GetEnv(ctx)

	dir, err := folders.Resolve(env.Getwd, dirArg)
	if err != nil {
		return err
	}
	if err := folders.CheckDir(a.fsys, dir); err != nil {
		return err
	}

	if a.dry {
		restrict.DoUnlessTesting(ctx, landlock.RODirs(dir))
		_, err := folders.Export(a.fsys, dir, env.Stdout)
		return err
	}

	out, err := folders.Resolve(env.Getwd, outArg)
	if err != nil {
		return err
	}

	// Drop privileges if not in tests.
	restrict.DoUnlessTesting(ctx, landlock.RODirs(dir), landlock.RWDirs(filepath.Dir(out)))

	if err := atomicio.WriteFile(a.fsys, out, 0o644, func(w io.Writer) error {
		_, err := folders.Export(a.fsys, dir, w)
		return err
	}); err != nil {
		return fmt.Errorf("failed to write CSV %s: %w", outArg, err)
	}

	fmt.Fprintf(env.Stdout, "Wrote CSV: %s\n", outArg)
	return nil
}

func (a *app) importCSV(ctx context.Context, dirArg, csvArg string) error {
	env := cli.GetEnv(ctx)

	dir, err := folders.Resolve(env.Getwd, dirArg)
	if err != nil {
		return err
	}
	if err := folders.CheckDir(a.fsys, dir); err != nil {
		return err
	}
	csvPath, err := folders.Resolve(env.Getwd, csvArg)
	if err != nil {
		return err
	}
	if err := folders.CheckFile(a.fsys, csvPath); err != nil {
		return err
	}

	// Rows may name paths outside dir, so the sandbox has to cover them.
	recs, err := withCSV(ctx, a.fsys, csvPath, folders.Records)
	if err != nil {
		return err
	}

	// Drop privileges if not in tests.
	restrict.DoUnlessTesting(ctx, importRules(a.fsys, dir, csvPath, recs, a.dry)...)

	if a.dry {
		sum, err := withCSV(ctx, a.fsys, csvPath, func(r io.Reader) (folders.Summary, error) {
			return folders.Rehearse(ctx, a.fsys, dir, r, &folders.Options{
				Logf:    env.Logf,
				Renamed: printRename(env, "Would rename"),
			})
		})
		if err != nil {
			return err
		}
		env.Logf("Dry run: %v", sum)
		return nil
	}

	if a.strict {
		var problems logger.Recorder
		sum, err := withCSV(ctx, a.fsys, csvPath, func(r io.Reader) (folders.Summary, error) {
			return folders.Rehearse(ctx, a.fsys, dir, r, &folders.Options{Logf: problems.Logf})
		})
		if err != nil {
			return err
		}
		if !sum.Clean() {
			problems.Replay(env.Logf)
			return fmt.Errorf("%w: %d of %d rows, nothing renamed", folders.ErrPlanConflict, sum.Skipped+sum.Failed, sum.Rows)
		}
	}

	sum, err := withCSV(ctx, a.fsys, csvPath, func(r io.Reader) (folders.Summary, error) {
		return folders.Import(ctx, a.fsys, dir, r, &folders.Options{
			Logf:    env.Logf,
			Renamed: printRename(env, "Renamed"),
		})
	})
	if err != nil {
		return err
	}
	env.Logf("%v", sum)
	return nil
}

// withCSV opens the CSV file and passes it to f.
func withCSV[T any](ctx context.Context, fsys afero.Fs, csvPath string, f func(io.Reader) (T, error)) (T, error) {
	file, err := fsys.Open(csvPath)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to read CSV %s: %w", csvPath, err)
	}
	defer file.Close()

	v, err := f(file)
	if err != nil && ctx.Err() == nil {
		return v, fmt.Errorf("%s: %w", csvPath, err)
	}
	return v, err
}

// importRules returns the sandbox rules for importing recs into dir: the CSV
// file is read-only, and every directory that holds a source or a target of
// a rename is writable (read-only for dry runs).
func importRules(fsys afero.Fs, dir, csvPath string, recs []folders.Record, dry bool) []landlock.Rule {
	dirs := importDirs(fsys, dir, recs)
	dirRule := landlock.RWDirs(dirs...).WithRefer()
	if dry {
		dirRule = landlock.RODirs(dirs...)
	}
	return []landlock.Rule{dirRule, landlock.ROFiles(csvPath)}
}

// importDirs returns the smallest set of existing directories that contains
// dir and the parent of every path named by recs. Parents that don't exist
// yet are replaced by their closest existing ancestor.
func importDirs(fsys afero.Fs, dir string, recs []folders.Record) []string {
	dirs := []string{dir}
	for _, rec := range recs {
		if rec.OldName == "" || rec.NewName == "" {
			continue
		}
		for _, name := range []string{rec.OldName, rec.NewName} {
			dirs = append(dirs, existingAncestor(fsys, filepath.Dir(filepath.Join(dir, name))))
		}
	}

	slices.Sort(dirs)
	dirs = slices.Compact(dirs)
	var roots []string
	for _, d := range dirs {
		if slices.ContainsFunc(roots, func(root string) bool { return within(d, root) }) {
			continue
		}
		roots = append(roots, d)
	}
	return roots
}

func existingAncestor(fsys afero.Fs, path string) string {
	for {
		if fi, err := fsys.Stat(path); err == nil && fi.IsDir() {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

// within reports whether path is root or lies below it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func printRename(env *cli.Env, verb string) func(oldName, newName string) {
	return func(oldName, newName string) {
		fmt.Fprintf(env.Stdout, "%s: %s -> %s\n", verb, oldName, newName)
	}
}
