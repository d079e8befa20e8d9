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

package jdk

import (
	"context"
	"path/filepath"
	"testing"

	"jnativescan.io/jnativescan/go/platform/system"
	"jnativescan.io/jnativescan/go/test/platformtest"
	"jnativescan.io/jnativescan/go/test/testutil"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()
	platformtest.WriteJmods(t, filepath.Join(home, "jmods"), "23")
	sym := platformtest.WriteCtSym(t, filepath.Join(home, "lib", "ct.sym"), 17, 21, 22, 23)
	exploded := platformtest.WriteExploded(t, filepath.Join(t.TempDir(), "modules"), "24")

	tests := []struct {
		path string
		want string
	}{
		{home, "jmods " + filepath.Join(home, "jmods") + ", ct.sym " + sym},
		{filepath.Join(home, "jmods"), "jmods " + filepath.Join(home, "jmods")},
		{sym, "ct.sym " + sym},
		{exploded, "exploded modules " + exploded},
		{filepath.Dir(exploded), "exploded modules " + exploded},
	}
	for _, test := range tests {
		chain, err := Open(ctx, test.path)
		if err != nil {
			t.Errorf("Open(%s): unexpected error: %v", test.path, err)
			continue
		}
		if got := chain.Name(); got != test.want {
			t.Errorf("Open(%s): got %q, want %q", test.path, got, test.want)
		}
	}

	chain, err := Open(ctx, home)
	testutil.Fatalf(t, "Open: %v", err)
	for _, r := range []int{21, 23} {
		pf, err := chain.Platform(ctx, system.Of(r))
		testutil.Fatalf(t, "Platform: %v (release %d)", err, r)
		if _, err := pf.ClassFile(ctx, "java.base", platformtest.ObjectOwner); err != nil {
			t.Errorf("release %d: ClassFile(Object): %v", r, err)
		}
		pf.Close()
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing"), t.TempDir()} {
		if chain, err := Open(ctx, path); err == nil {
			t.Errorf("Open(%q): got %v, want error", path, chain.Name())
		}
	}
}
