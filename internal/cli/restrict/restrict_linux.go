// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build linux && !android

package restrict

import (
	"context"

	"github.com/landlock-lsm/go-landlock/landlock"
	"go.astrophena.name/foldercsv/internal/cli"
)

// Do restricts all goroutines of this program to [landlock.Rule]s.
// If sandboxing fails, a message is logged and the program continues.
func Do(ctx context.Context, rules ...landlock.Rule) {
	if err := landlock.V4.BestEffort().Restrict(rules...); err != nil {
		cli.GetEnv(ctx).Logf("Sandboxing failed: %v", err)
	}
}
