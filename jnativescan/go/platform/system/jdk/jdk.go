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

// Package jdk locates the platform descriptions available in a JDK
// installation.
package jdk // import "jnativescan.io/jnativescan/go/platform/system/jdk"

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"jnativescan.io/jnativescan/go/module"
	"jnativescan.io/jnativescan/go/platform/system"
	"jnativescan.io/jnativescan/go/platform/system/ctsym"
	"jnativescan.io/jnativescan/go/platform/system/exploded"
	"jnativescan.io/jnativescan/go/platform/system/jmods"
	"jnativescan.io/jnativescan/go/platform/vfs"
	"jnativescan.io/jnativescan/go/util/log"
)

// HomeEnv is the environment variable naming the default JDK.
const HomeEnv = "JAVA_HOME"

// Open returns the providers found at path, which is either a JDK home
// directory, a ct.sym archive, a jmods directory or a directory of exploded
// modules. Providers describing the JDK's own release come first, followed by
// ct.sym for past releases.
func Open(ctx context.Context, path string) (system.Chain, error) {
	if path == "" {
		return nil, fmt.Errorf("no platform location given and %s is not set", HomeEnv)
	}
	if filepath.Base(path) == ctsym.FileName && vfs.IsRegular(ctx, path) {
		return system.Chain{ctsym.New(path)}, nil
	}
	if !vfs.IsDir(ctx, path) {
		return nil, fmt.Errorf("platform location %s: %w", path, os.ErrNotExist)
	}

	var chain system.Chain
	for _, dir := range []string{path, filepath.Join(path, "modules")} {
		if vfs.IsRegular(ctx, filepath.Join(dir, "java.base", module.InfoClass)) {
			chain = append(chain, exploded.New(dir))
			break
		}
	}
	for _, dir := range []string{path, filepath.Join(path, "jmods")} {
		if vfs.IsRegular(ctx, filepath.Join(dir, "java.base.jmod")) {
			chain = append(chain, jmods.New(dir))
			break
		}
	}
	if sym := filepath.Join(path, "lib", ctsym.FileName); vfs.IsRegular(ctx, sym) {
		chain = append(chain, ctsym.New(sym))
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%s does not contain a Java platform (exploded modules, jmods or lib/%s)", path, ctsym.FileName)
	}
	log.Infof("Platform providers: %s", chain.Name())
	return chain, nil
}

// Home returns the JDK named by the environment.
func Home() string { return os.Getenv(HomeEnv) }
