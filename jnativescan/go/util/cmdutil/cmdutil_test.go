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

package cmdutil_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"testing"

	"jnativescan.io/jnativescan/go/scan/fatal"
	"jnativescan.io/jnativescan/go/util/cmdutil"

	"github.com/google/subcommands"
)

func ExampleNewInfo() {
	cmd := struct {
		cmdutil.Info
	}{
		Info: cmdutil.NewInfo("example", "Demonstrate how to set up a subcommand",
			`Show the user how to use the cmdutil.NewInfo function.`),
	}
	cmd.Stdout = os.Stdout

	// Set up a flag set for demo purposes; most tools will use the default
	// command line flags from the flag package.
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	fs.Parse([]string{"example", "foo"})

	// Register a command with the dispatcher.
	cmdr := subcommands.NewCommander(fs, "cmdutil_test")
	cmdr.Register(cmd, "examples")

	// Execute...
	fmt.Println(cmdr.Execute(context.Background(), fs))
	// Output:
	// Show the user how to use the cmdutil.NewInfo function.
	// 0
}

func TestFailErr(t *testing.T) {
	var buf bytes.Buffer
	info := cmdutil.NewInfo("x", "", "")
	info.Stderr = &buf

	err := fatal.Wrap(errors.New("disk on fire"), "reading %s", "a.jar")
	if got := info.FailErr(err); got != subcommands.ExitFailure {
		t.Errorf("FailErr: got status %v, want %v", got, subcommands.ExitFailure)
	}
	if got, want := buf.String(), "ERROR: reading a.jar\nCAUSED BY: disk on fire\n"; got != want {
		t.Errorf("FailErr output: got %q, want %q", got, want)
	}
}
