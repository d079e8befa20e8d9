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

// Binary jnativescan reports the native method declarations and the calls to
// restricted platform methods of a Java application, or the modules that need
// native access.
//
// Arguments of the form @file are replaced by the arguments listed in file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"jnativescan.io/jnativescan/go/module"
	"jnativescan.io/jnativescan/go/platform/system"
	"jnativescan.io/jnativescan/go/platform/system/jdk"
	"jnativescan.io/jnativescan/go/scan/fatal"
	"jnativescan.io/jnativescan/go/scan/task"
	"jnativescan.io/jnativescan/go/util/argfile"
	"jnativescan.io/jnativescan/go/util/build"
	"jnativescan.io/jnativescan/go/util/cmdutil"
	"jnativescan.io/jnativescan/go/util/flagutil"
	"jnativescan.io/jnativescan/go/util/log"
	"jnativescan.io/jnativescan/go/util/profile"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command with the given arguments and returns its exit
// status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jnativescan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var classPath, modulePath flagutil.PathList
	var roots flagutil.StringList
	fs.Var(&classPath, "class-path", "The class path to scan, as a list of jar files and class directories")
	fs.Var(&modulePath, "module-path", "The module path holding the modules given by --add-modules")
	fs.Var(&roots, "add-modules", "Comma-separated root modules to scan, or "+module.AllModulePath)
	var (
		release     = fs.String("release", "", "The Java release to check against (default: the newest of --system)")
		printAccess = fs.Bool("print-native-access", false, "Print the comma-separated modules that use native access instead of every finding")
		systemPath  = fs.String("system", jdk.Home(), "The JDK home, jmods directory, exploded modules directory or ct.sym file describing the platform (default $"+jdk.HomeEnv+")")
		format      = fs.String("output-format", string(task.Text), "Output format: text, json or yaml")
		verbose     = fs.Bool("verbose", false, "Log progress to stderr")
		cpuProfile  = fs.String("cpu_profile", "", "Write CPU profile to the specified file (if nonempty)")
		version     = fs.Bool("version", false, "Print version information and exit")
	)
	fs.Usage = flagutil.SimpleUsage(fs,
		"Scan class files for native method declarations and calls to restricted methods",
		"[--class-path path] [--module-path path --add-modules m1,m2]\n[--release version] [--print-native-access] [@argfile ...]")

	args, err := argfile.Expand(ctx, args)
	if err != nil {
		cmdutil.PrintError(stderr, err)
		return 1
	}
	if err := fs.Parse(args); errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		return 1
	}
	if *version {
		fmt.Fprintln(stdout, build.VersionLine())
		return 0
	}
	if fs.NArg() > 0 {
		flagutil.UsageErrorf(stderr, fs, "unexpected arguments: %s", strings.Join(fs.Args(), " "))
		return 1
	}
	log.SetOutput(stderr)
	log.SetVerbose(*verbose)

	cfg := task.Config{
		ClassPath:   classPath.Clean(),
		ModulePath:  modulePath.Clean(),
		RootModules: roots,
	}
	if *printAccess {
		cfg.Action = task.PrintNativeAccess
	}
	if cfg.Format, err = task.ParseFormat(*format); err != nil {
		flagutil.UsageError(stderr, fs, err.Error())
		return 1
	}
	if *release != "" {
		if cfg.Release, err = system.ParseRelease(*release); err != nil {
			cmdutil.PrintError(stderr, fatal.Wrap(err, "Invalid release: %s", *release))
			return 1
		}
	}
	provider, err := jdk.Open(ctx, *systemPath)
	if err != nil {
		cmdutil.PrintError(stderr, fatal.Wrap(err, "Unable to locate the Java platform"))
		return 1
	}

	if err := profile.Start(ctx, *cpuProfile); err != nil {
		cmdutil.PrintError(stderr, err)
		return 1
	}
	defer func() {
		if err := profile.Stop(); err != nil {
			log.Warningf("Stopping profile: %v", err)
		}
	}()

	t := &task.Task{Config: cfg, Provider: provider, Out: stdout, Err: stderr}
	if err := t.Run(ctx); err != nil {
		cmdutil.PrintError(stderr, err)
		return 1
	}
	return 0
}
