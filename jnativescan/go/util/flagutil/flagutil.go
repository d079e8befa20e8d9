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

// Package flagutil is a collection of helper functions for the scanner
// binaries using the flag package.
package flagutil // import "jnativescan.io/jnativescan/go/util/flagutil"

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jnativescan.io/jnativescan/go/util/build"
)

// SimpleUsage returns a basic usage function for fs that prints the given
// description and list of arguments in the following format:
//
//	Usage: binary <arg0> <arg1> ... <argN>
//	<description>
//
//	<build.VersionLine()>
//
//	Flags:
//	<fs.PrintDefaults()>
func SimpleUsage(fs *flag.FlagSet, description string, args ...string) func() {
	return func() {
		prefix := fmt.Sprintf("Usage: %s ", fs.Name())
		alignArgs(len(prefix), args)
		fmt.Fprintf(fs.Output(), `%s%s
%s

%s

Flags:
`, prefix, strings.Join(args, " "), description, build.VersionLine())
		fs.PrintDefaults()
	}
}

func alignArgs(col int, args []string) {
	s := strings.Repeat(" ", col)
	for i, arg := range args {
		args[i] = strings.Replace(arg, "\n", "\n"+s, -1)
	}
}

// UsageError prints msg to w and calls the usage function of fs.
func UsageError(w io.Writer, fs *flag.FlagSet, msg string) {
	fmt.Fprintln(w, "ERROR: "+msg)
	fs.Usage()
}

// UsageErrorf prints str formatted with the given vals to w and calls the
// usage function of fs.
func UsageErrorf(w io.Writer, fs *flag.FlagSet, str string, vals ...any) {
	UsageError(w, fs, fmt.Sprintf(str, vals...))
}

// StringList implements a flag.Value that accepts a sequence of values as a CSV.
// Repeating the flag appends to the list.
type StringList []string

// Set implements part of the flag.Getter interface and will append new values to the flag.
func (f *StringList) Set(s string) error {
	*f = append(*f, splitNonEmpty(s, ",")...)
	return nil
}

// String implements part of the flag.Getter interface and returns a string-ish value for the flag.
func (f *StringList) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(*f, ",")
}

// Get implements flag.Getter and returns a slice of string values.
func (f *StringList) Get() any {
	if f == nil {
		return []string(nil)
	}
	return *f
}

// PathList implements a flag.Value that accepts a list of file system paths
// separated by the platform path list separator (':' or ';'). Repeating the
// flag appends to the list.
type PathList []string

// Set implements part of the flag.Getter interface and will append new paths to the flag.
func (f *PathList) Set(s string) error {
	*f = append(*f, splitNonEmpty(s, string(os.PathListSeparator))...)
	return nil
}

// String implements part of the flag.Getter interface and returns a string-ish value for the flag.
func (f *PathList) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(*f, string(os.PathListSeparator))
}

// Get implements flag.Getter and returns a slice of paths.
func (f *PathList) Get() any {
	if f == nil {
		return []string(nil)
	}
	return *f
}

// Clean returns the paths of f with filepath.Clean applied.
func (f PathList) Clean() []string {
	out := make([]string, len(f))
	for i, p := range f {
		out[i] = filepath.Clean(p)
	}
	return out
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, v := range strings.Split(s, sep) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
