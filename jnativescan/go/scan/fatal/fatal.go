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

// Package fatal defines the single user-facing error type of the scanner.
//
// A fatal error aborts the whole scan. It carries a human-readable message
// and an optional cause; the top-level handler prints the message followed by
// every message in the cause chain.
package fatal // import "jnativescan.io/jnativescan/go/scan/fatal"

import (
	"errors"
	"fmt"
)

// Error is a fatal scanner error.
type Error struct {
	Msg   string
	Cause error
}

// Error implements the error interface. The cause is not included; use
// Chain to render the complete list of messages.
func (e *Error) Error() string { return e.Msg }

// Unwrap returns the cause of e, if any.
func (e *Error) Unwrap() error { return e.Cause }

// New returns a fatal error with the given message and no cause.
func New(msg string) *Error { return &Error{Msg: msg} }

// Errorf returns a fatal error with a formatted message and no cause.
func Errorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a fatal error with a formatted message caused by cause.
func Wrap(cause error, format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err is, or wraps, a fatal error.
func Is(err error) bool {
	var fe *Error
	return errors.As(err, &fe)
}

// Chain returns the message of err followed by the message of each of its
// causes. Only fatal errors contribute their bare message; the first
// non-fatal error in the chain contributes its complete Error() text and
// ends the chain, since such errors already render their own causes.
func Chain(err error) []string {
	var msgs []string
	for err != nil {
		fe, ok := err.(*Error)
		if !ok {
			msgs = append(msgs, err.Error())
			break
		}
		msgs = append(msgs, fe.Msg)
		err = fe.Cause
	}
	return msgs
}
