// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package logger defines a type for writing to logs and a recorder that keeps
// logged lines in memory so they can be replayed later.
package logger

import (
	"fmt"
	"strings"
	"sync"
)

// Logf is the basic logger type: a printf-like func. Like [log.Printf], the
// format need not end in a newline. Logf functions must be safe for concurrent
// use.
type Logf func(format string, args ...any)

// Discard is a Logf that drops everything.
func Discard(string, ...any) {}

// Recorder remembers every line logged through its Logf method.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Logf formats the message and appends it to the recorded lines. A trailing
// newline is stripped.
func (r *Recorder) Logf(format string, args ...any) {
	line := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

// Lines returns a copy of all recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.lines))
	copy(lines, r.lines)
	return lines
}

// Replay sends all recorded lines to logf in order.
func (r *Recorder) Replay(logf Logf) {
	for _, line := range r.Lines() {
		logf("%s", line)
	}
}
