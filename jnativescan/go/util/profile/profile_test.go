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

package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStartStop(t *testing.T) {
	ctx := context.Background()
	if err := Start(ctx, ""); err != nil {
		t.Fatalf("Start(\"\"): %v", err)
	}
	if err := Stop(); err != nil {
		t.Fatalf("Stop without profile: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cpu.prof")
	if err := Start(ctx, path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := Start(ctx, path); err == nil {
		t.Error("second Start: got nil error")
	}
	if err := Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("profile %s: %v, %v", path, fi, err)
	}
}
