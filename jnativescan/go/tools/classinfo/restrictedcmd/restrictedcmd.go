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
// Package restrictedcmd provides the classinfo command listing the
// restricted methods of platform classes.
package restrictedcmd // import "jnativescan.io/jnativescan/go/tools/classinfo/restrictedcmd"

import (
	"context"
	"flag"
	"fmt"

	"jnativescan.io/jnativescan/go/classfile"
	"jnativescan.io/jnativescan/go/platform/system"
	"jnativescan.io/jnativescan/go/platform/system/jdk"
	"jnativescan.io/jnativescan/go/scan/finder"
	"jnativescan.io/jnativescan/go/scan/resolve"
	"jnativescan.io/jnativescan/go/util/cmdutil"

	"github.com/google/subcommands"
)

type restrictedCommand struct {
	cmdutil.Info

	system  string
	release string
}

// New creates a new subcommand listing restricted platform methods.
func New() subcommands.Command {
	return &restrictedCommand{
		Info: cmdutil.NewInfo("restricted", "list the restricted methods of platform classes",
			"[--system path] [--release version] <class>..."),
	}
}

// SetFlags implements the subcommands interface and provides command-specific
// flags for the restricted command.
func (c *restrictedCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.system, "system", jdk.Home(), "JDK home, jmods directory, exploded modules directory or ct.sym file")
	fs.StringVar(&c.release, "release", "", "Release to describe (default: the newest offered)")
}

// Execute implements the subcommands interface. Each argument is a
// qualified class name ("java.lang.foreign.Linker"); classes that the
// platform does not export are reported as such.
func (c *restrictedCommand) Execute(ctx context.Context, fs *flag.FlagSet, _ ...any) (status subcommands.ExitStatus) {
	if fs.NArg() == 0 {
		return c.Fail("no classes given")
	}
	var release system.Release
	if c.release != "" {
		r, err := system.ParseRelease(c.release)
		if err != nil {
			return c.Fail("invalid release %q: %v", c.release, err)
		}
		release = r
	}
	provider, err := jdk.Open(ctx, c.system)
	if err != nil {
		return c.Fail("opening platform: %v", err)
	}
	pf, err := provider.Platform(ctx, release)
	if err != nil {
		return c.Fail("opening platform: %v", err)
	}
	defer func() {
		if err := pf.Close(); err != nil {
			status = c.Fail("closing platform: %v", err)
		}
	}()
	mods, err := system.Finder(ctx, pf)
	if err != nil {
		return c.Fail("reading system modules: %v", err)
	}
	r, err := resolve.ForSystem(ctx, pf, mods)
	if err != nil {
		return c.Fail("reading system modules: %v", err)
	}

	for _, name := range fs.Args() {
		if err := c.describe(ctx, r, classfile.OfQualName(name)); err != nil {
			return c.FailErr(err)
		}
	}
	return subcommands.ExitSuccess
}

func (c *restrictedCommand) describe(ctx context.Context, r resolve.Resolver, desc classfile.ClassDesc) error {
	info, ok, err := r.Lookup(ctx, desc)
	if err != nil {
		return err
	} else if !ok {
		fmt.Fprintf(c.Out(), "%s: not an exported platform class\n", desc.QualName())
		return nil
	}
	fmt.Fprintf(c.Out(), "%s:\n", desc.QualName())
	for _, m := range info.Class.Methods {
		if finder.IsRestricted(m) {
			fmt.Fprintf(c.Out(), "  %s\n", finder.OfMethod(desc, m))
		}
	}
	return nil
}
