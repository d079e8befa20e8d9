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
// Package classescmd provides the classinfo command listing the classes of a
// class path.
package classescmd // import "jnativescan.io/jnativescan/go/tools/classinfo/classescmd"

import (
	"context"
	"flag"
	"fmt"

	"jnativescan.io/jnativescan/go/classfile"
	"jnativescan.io/jnativescan/go/platform/jar"
	"jnativescan.io/jnativescan/go/scan/resolve"
	"jnativescan.io/jnativescan/go/scan/source"
	"jnativescan.io/jnativescan/go/util/cmdutil"

	"github.com/google/subcommands"
)

type classesCommand struct {
	cmdutil.Info

	release int
	methods bool
}

// New creates a new subcommand listing the classes of jars and class
// directories.
func New() subcommands.Command {
	return &classesCommand{
		Info: cmdutil.NewInfo("classes", "list the classes of a class path", "[--release N] [--methods] <jar|dir>..."),
	}
}

// SetFlags implements the subcommands interface and provides command-specific
// flags for the classes command.
func (c *classesCommand) SetFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.release, "release", jar.Latest, "Release whose entries of multi-release jars are listed")
	fs.BoolVar(&c.methods, "methods", false, "List the methods of each class")
}

// Execute implements the subcommands interface and lists the classes of the
// paths given as arguments, following manifest Class-Path attributes.
func (c *classesCommand) Execute(ctx context.Context, fs *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if fs.NArg() == 0 {
		return c.Fail("no class path entries given")
	}
	sources, err := source.DiscoverClassPath(ctx, fs.Args())
	if err != nil {
		return c.FailErr(err)
	}
	classes, err := resolve.ForSources(ctx, sources, c.release)
	if err != nil {
		return c.FailErr(err)
	}
	out := c.Out()
	err = classes.ForEach(func(desc classfile.ClassDesc, info resolve.Info) error {
		fmt.Fprintf(out, "%s\t%s\n", desc.QualName(), info.Source.Path())
		if !c.methods {
			return nil
		}
		for _, m := range info.Class.Methods {
			var note string
			if m.IsNative() {
				note = " native"
			}
			fmt.Fprintf(out, "  %s%s\t%s%s%s\n", m.Name, m.Descriptor, m.Name, m.Descriptor.DisplayDescriptor(), note)
		}
		return nil
	})
	if err != nil {
		return c.FailErr(err)
	}
	return subcommands.ExitSuccess
}
