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

// Package cmdutil exports shared logic for implementing command-line
// subcommands using the github.com/google/subcommands package.
package cmdutil // import "jnativescan.io/jnativescan/go/util/cmdutil"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"jnativescan.io/jnativescan/go/scan/fatal"

	"github.com/google/subcommands"
)

// Info implements the methods of the subcommands.Command interface that handle
// the command name and documentation. It also provides a noop default SetFlags
// method and a default Execute method that prints its usage and exits.
type Info struct {
	name     string
	synopsis string
	usage    string

	// Stdout and Stderr default to os.Stdout and os.Stderr when nil.
	Stdout, Stderr io.Writer
}

// NewInfo constructs an Info that reports the specified arguments for command
// name, brief synopsis, and usage.
func NewInfo(name, synopsis, usage string) Info {
	if !strings.HasSuffix(usage, "\n") {
		usage += "\n"
	}
	return Info{name: name, synopsis: synopsis, usage: usage}
}

// Name implements part of subcommands.Command.
func (i Info) Name() string { return i.name }

// Synopsis implements part of subcommands.Command.
func (i Info) Synopsis() string { return i.synopsis }

// Usage implements part of subcommands.Command.
func (i Info) Usage() string { return i.usage + "\nOptions:\n" }

// SetFlags implements part of subcommands.Command.
func (i Info) SetFlags(*flag.FlagSet) {}

// Execute implements part of subcommands.Command.
// It prints the usage string to stdout and returns success.
func (i Info) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	fmt.Fprint(i.Out(), i.usage) // the undecorated usage string
	return subcommands.ExitSuccess
}

// Out returns the writer for command output.
func (i Info) Out() io.Writer {
	if i.Stdout != nil {
		return i.Stdout
	}
	return os.Stdout
}

// Err returns the writer for command errors.
func (i Info) Err() io.Writer {
	if i.Stderr != nil {
		return i.Stderr
	}
	return os.Stderr
}

// Fail prints an error message and returns subcommands.ExitFailure.
func (i Info) Fail(msg string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(i.Err(), "ERROR: "+msg+"\n", args...)
	return subcommands.ExitFailure
}

// FailErr prints err, followed by each of its causes, and returns
// subcommands.ExitFailure.
func (i Info) FailErr(err error) subcommands.ExitStatus {
	PrintError(i.Err(), err)
	return subcommands.ExitFailure
}

// PrintError writes err to w as an ERROR line followed by a CAUSED BY line
// for each of its causes.
func PrintError(w io.Writer, err error) {
	chain := fatal.Chain(err)
	fmt.Fprintln(w, "ERROR: "+chain[0])
	for _, cause := range chain[1:] {
		fmt.Fprintln(w, "CAUSED BY: "+cause)
	}
}
