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

// Package argfile expands command-line arguments of the form @file into the
// arguments listed in the file.
package argfile // import "jnativescan.io/jnativescan/go/util/argfile"

import (
	"context"
	"fmt"
	"strings"

	"jnativescan.io/jnativescan/go/platform/vfs"

	"bitbucket.org/creachadair/shell"
)

// Expand returns args with each @file argument replaced by the contents of
// file, split into words with shell quoting rules. Lines starting with # are
// comments. An argument starting with @@ stands for itself without the first
// @. Arguments read from files are not expanded again.
func Expand(ctx context.Context, args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "@@"):
			out = append(out, arg[1:])
		case strings.HasPrefix(arg, "@") && len(arg) > 1:
			words, err := read(ctx, arg[1:])
			if err != nil {
				return nil, err
			}
			out = append(out, words...)
		default:
			out = append(out, arg)
		}
	}
	return out, nil
}

func read(ctx context.Context, path string) ([]string, error) {
	data, err := vfs.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading argument file: %v", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			lines = append(lines, line)
		}
	}
	words, ok := shell.Split(strings.Join(lines, "\n"))
	if !ok {
		return nil, fmt.Errorf("argument file %s: unbalanced quotes", path)
	}
	return words, nil
}
