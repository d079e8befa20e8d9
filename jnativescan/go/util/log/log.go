/*
 * Copyright 2025 The Kythe Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package log provides semantic log functions for the scanner binaries.
//
// Informational messages are only emitted once SetVerbose(true) has been
// called; warnings are always written.
package log // import "jnativescan.io/jnativescan/go/util/log"

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

var verbose atomic.Bool

// SetVerbose enables or disables the informational log.
func SetVerbose(v bool) { verbose.Store(v) }

// Verbose reports whether the informational log is enabled.
func Verbose() bool { return verbose.Load() }

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
}

// Infof logs to the informational log.
func Infof(msg string, args ...any) {
	if Verbose() {
		log.Printf(msg, args...)
	}
}

// Warningf logs to the warning log.
func Warningf(msg string, args ...any) { log.Printf("WARNING: "+msg, args...) }
