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
// Binary classinfo inspects the inputs of a native access scan.
//
// Examples:
//
//	# List the classes of a class path and their native methods.
//	classinfo classes --methods app.jar lib/
//
//	# Print the module declarations found on a module path.
//	classinfo module mods/
//
//	# List the restricted methods of platform classes.
//	classinfo restricted --system $JAVA_HOME java.lang.foreign.Linker
package main

import (
	"context"
	"flag"
	"os"

	"jnativescan.io/jnativescan/go/tools/classinfo/classescmd"
	"jnativescan.io/jnativescan/go/tools/classinfo/modulecmd"
	"jnativescan.io/jnativescan/go/tools/classinfo/restrictedcmd"
	"jnativescan.io/jnativescan/go/util/log"

	"github.com/google/subcommands"
)

var verbose = flag.Bool("verbose", false, "Log progress to stderr")

func init() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(classescmd.New(), "")
	subcommands.Register(modulecmd.New(), "")
	subcommands.Register(restrictedcmd.New(), "")
}

func main() {
	flag.Parse()
	log.SetVerbose(*verbose)
	ctx := context.Background()

	os.Exit(int(subcommands.Execute(ctx)))
}
