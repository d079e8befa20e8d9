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
// Package modulecmd provides the classinfo command printing the modules of a
// module path.
package modulecmd // import "jnativescan.io/jnativescan/go/tools/classinfo/modulecmd"

import (
	"context"
	"flag"
	"fmt"

	"jnativescan.io/jnativescan/go/module"
	"jnativescan.io/jnativescan/go/platform/jar"
	"jnativescan.io/jnativescan/go/util/cmdutil"

	"github.com/google/subcommands"
)

type moduleCommand struct {
	cmdutil.Info

	release int
}

// New creates a new subcommand printing module declarations.
func New() subcommands.Command {
	return &moduleCommand{
		Info: cmdutil.NewInfo("module", "print the modules of a module path", "[--release N] <path>..."),
	}
}

// SetFlags implements the subcommands interface and provides command-specific
// flags for the module command.
func (c *moduleCommand) SetFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.release, "release", jar.Latest, "Release whose module-info of multi-release jars is read")
}

// Execute implements the subcommands interface and prints the declaration of
// each module found on the module path given as arguments.
func (c *moduleCommand) Execute(ctx context.Context, fs *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if fs.NArg() == 0 {
		return c.Fail("no module path entries given")
	}
	refs, err := module.OfPaths(c.release, fs.Args()...).FindAll(ctx)
	if err != nil {
		return c.FailErr(err)
	}
	for _, ref := range refs {
		fmt.Fprintf(c.Out(), "// %s\n%s\n", ref.Location, ref.Descriptor)
	}
	return subcommands.ExitSuccess
}
