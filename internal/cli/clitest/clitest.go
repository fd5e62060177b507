// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package clitest provides utilities for testing command-line applications.
package clitest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"go.astrophena.name/foldercsv/internal/cli"
	"go.astrophena.name/foldercsv/internal/testutil"

	"golang.org/x/tools/txtar"
)

// TmpDir is replaced in [Case.Args] with the path of the temporary directory
// created for the case.
const TmpDir = "[TMPDIR]"

// Case represents a single test case for a command-line application.
type Case[App cli.App] struct {
	// Args are the command-line arguments to pass to the application.
	// Occurrences of TmpDir are replaced with the case's temporary directory.
	Args []string
	// Fixture is an optional txtar archive extracted into the temporary
	// directory before the application runs. File names ending with a slash
	// become directories.
	Fixture string
	// Stdin is the optional standard input to pass to the application.
	Stdin io.Reader
	// Env are the environment variables to set before running the application.
	Env map[string]string
	// WantErr is the expected error to be returned by the application, checked
	// with errors.Is.
	WantErr error
	// WantErrType is the expected type of the error to be returned by the
	// application, checked with errors.As.
	WantErrType error
	// WantNothingPrinted indicates that no output should be printed to stdout or
	// stderr.
	WantNothingPrinted bool
	// WantInStdout is the expected substring to be present in the stdout output.
	WantInStdout string
	// WantInStderr is the expected substring to be present in the stderr output.
	WantInStderr string
	// WantDir lists the entries expected in the temporary directory after the
	// run, as returned by testutil.ListDir.
	WantDir []string
	// CheckFunc is an optional function to perform additional checks after the
	// application has run. dir is the case's temporary directory.
	CheckFunc func(t *testing.T, app App, dir string)
}

// Run runs the provided test cases against the given command-line application.
// The working directory seen by the application is the case's temporary
// directory.
func Run[App cli.App](t *testing.T, setup func(*testing.T) App, cases map[string]Case[App]) {
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			app := setup(t)
			dir := t.TempDir()

			if tc.Fixture != "" {
				testutil.ExtractTxtar(t, txtar.Parse([]byte(tc.Fixture)), dir)
			}

			args := make([]string, len(tc.Args))
			for i, arg := range tc.Args {
				args[i] = strings.ReplaceAll(arg, TmpDir, dir)
			}

			stdin := tc.Stdin
			if stdin == nil {
				stdin = strings.NewReader("")
			}

			var stdout, stderr bytes.Buffer
			env := &cli.Env{
				Args:   args,
				Getenv: getenvFunc(tc.Env),
				Getwd:  func() (string, error) { return dir, nil },
				Stdin:  stdin,
				Stdout: &stdout,
				Stderr: &stderr,
			}

			err := cli.Run(cli.WithEnv(context.Background(), env), app)

			// Don't use && because we want to trap all cases where err is
			// nil.
			if err == nil {
				if tc.WantErr != nil {
					t.Fatalf("must fail with error: %v", tc.WantErr)
				}
				if tc.WantErrType != nil {
					t.Fatalf("must fail with error type %T", tc.WantErrType)
				}
			}

			if err != nil && tc.WantErrType != nil {
				target := reflect.New(reflect.TypeOf(tc.WantErrType))
				if !errors.As(err, target.Interface()) {
					t.Fatalf("want error type %T, got %T", tc.WantErrType, err)
				}
			}

			if err != nil && tc.WantErr == nil && tc.WantErrType == nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err != nil && tc.WantErr != nil && !errors.Is(err, tc.WantErr) {
				t.Fatalf("got error: %v", err)
			}

			if tc.WantNothingPrinted {
				if stdout.String() != "" {
					t.Errorf("stdout must be empty, got: %q", stdout.String())
				}
				if stderr.String() != "" {
					t.Errorf("stderr must be empty, got: %q", stderr.String())
				}
			}

			if tc.WantInStdout != "" && !strings.Contains(stdout.String(), tc.WantInStdout) {
				t.Errorf("stdout must contain %q, got: %q", tc.WantInStdout, stdout.String())
			}
			if tc.WantInStderr != "" && !strings.Contains(stderr.String(), tc.WantInStderr) {
				t.Errorf("stderr must contain %q, got: %q", tc.WantInStderr, stderr.String())
			}

			if tc.WantDir != nil {
				testutil.AssertEqual(t, testutil.ListDir(t, dir), tc.WantDir)
			}

			if tc.CheckFunc != nil {
				tc.CheckFunc(t, app, dir)
			}
		})
	}
}

func getenvFunc(env map[string]string) func(string) string {
	return func(name string) string {
		if env == nil {
			return ""
		}
		return env[name]
	}
}
