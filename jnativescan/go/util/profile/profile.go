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

// Package profile writes CPU profiles for the scanner binaries.
package profile // import "jnativescan.io/jnativescan/go/util/profile"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"sync"

	"jnativescan.io/jnativescan/go/platform/vfs"
	"jnativescan.io/jnativescan/go/util/log"
)

var (
	path string
	file io.Closer
	mu   sync.Mutex
)

// Start begins profiling the program, writing data to the file at
// profPath. If profPath is empty, nothing happens. Start must not be called
// again until Stop is called.
func Start(ctx context.Context, profPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if profPath == "" {
		return nil
	}
	if file != nil {
		return errors.New("profiling already started")
	}
	f, err := vfs.Create(ctx, profPath)
	if err != nil {
		return fmt.Errorf("error creating profile file %q: %v", profPath, err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("starting CPU profile: %v", err)
	}
	file, path = f, profPath
	return nil
}

// Stop stops profiling the program. If profiling was not started, nothing
// happens.
func Stop() error {
	mu.Lock()
	defer mu.Unlock()

	if file == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := file.Close()
	file = nil
	if err != nil {
		return err
	}

	binPath, profPath := os.Args[0], path
	// Try to shorten file paths, if possible
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, binPath); err == nil && !strings.HasPrefix(rel, "../") {
			binPath = rel
		}
		if rel, err := filepath.Rel(cwd, profPath); err == nil && !strings.HasPrefix(rel, "../") {
			profPath = rel
		}
	}
	log.Infof("Profile data written: go tool pprof %s %s", binPath, profPath)
	return nil
}
