// Copyright 2025 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package safe provides panic-recovering goroutine launchers, so a bug in
// one background task (the IPC accept loop, the read API listener) cannot take the
// whole process down with it.
package safe

import (
	"runtime/debug"

	"github.com/x123la/lacrimosa/internal/telemetry/log"
)

// Go runs fn in a new goroutine, recovering any panic and logging it
// instead of letting it crash the process.
func Go(fn func()) {
	go func() {
		defer recoverAndLog()
		fn()
	}()
}

// GoNamed is like Go but tags the recovered-panic log line with name, for
// call sites where several background goroutines would otherwise be
// indistinguishable in the logs.
func GoNamed(name string, fn func()) {
	go func() {
		defer recoverAndLogNamed(name)
		fn()
	}()
}

func recoverAndLog() {
	if r := recover(); r != nil {
		log.Errorw("recovered panic in background goroutine",
			"panic", r,
			"stack", string(debug.Stack()),
		)
	}
}

func recoverAndLogNamed(name string) {
	if r := recover(); r != nil {
		log.Errorw("recovered panic in background goroutine",
			"name", name,
			"panic", r,
			"stack", string(debug.Stack()),
		)
	}
}
