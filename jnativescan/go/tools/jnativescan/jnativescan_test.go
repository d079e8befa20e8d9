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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jnativescan.io/jnativescan/go/classfile/classbuild"
	"jnativescan.io/jnativescan/go/test/platformtest"
)

type setup struct {
	platform string
	jar      string
}

func newSetup(t *testing.T) setup {
	t.Helper()
	root := t.TempDir()
	load := classbuild.Invokestatic(platformtest.LoadLibraryOwner, platformtest.LoadLibraryName, platformtest.LoadLibraryDesc)
	return setup{
		platform: platformtest.WriteExploded(t, filepath.Join(root, "jdk", "modules"), "21"),
		jar: classbuild.WriteJar(t, filepath.Join(root, "app.jar"), nil, map[string][]byte{
			"app/Main.class": classbuild.Class{
				Name:    "app/Main",
				Methods: []classbuild.Method{{Name: "main", Desc: "()V", Code: []classbuild.Insn{load, classbuild.Return()}}},
			}.Bytes(),
		}),
	}
}

func runArgs(args ...string) (status int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	status = run(context.Background(), args, &out, &errOut)
	return status, out.String(), errOut.String()
}

func TestRun(t *testing.T) {
	s := newSetup(t)
	status, out, errOut := runArgs("--system", filepath.Dir(s.platform), "--class-path", s.jar)
	if status != 0 {
		t.Fatalf("run: got status %d, stderr %q", status, errOut)
	}
	want := s.jar + ` (ALL-UNNAMED):
  app.Main:
    main()V references restricted methods:
      java.lang.System::loadLibrary(Ljava/lang/String;)V
`
	if out != want {
		t.Errorf("run: got output\n%s\nwant\n%s", out, want)
	}
}

func TestRunArgFile(t *testing.T) {
	s := newSetup(t)
	args := filepath.Join(t.TempDir(), "args")
	content := "--system " + s.platform + "\n--class-path " + s.jar + "\n--print-native-access\n--release 21\n"
	if err := os.WriteFile(args, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	status, out, errOut := runArgs("@" + args)
	if status != 0 || out != "ALL-UNNAMED\n" {
		t.Errorf("run: got status %d, output %q, stderr %q", status, out, errOut)
	}
}

func TestRunStatus(t *testing.T) {
	s := newSetup(t)
	tests := []struct {
		args   []string
		status int
		stdout string
		stderr string
	}{
		{[]string{"--version"}, 0, "Version: ", ""},
		{[]string{"--help"}, 0, "", "Usage: jnativescan"},
		{[]string{"--bogus"}, 1, "", "flag provided but not defined"},
		{[]string{"extra"}, 1, "", "ERROR: unexpected arguments: extra"},
		{[]string{"--output-format", "xml"}, 1, "", "ERROR: unknown output format"},
		{[]string{"--system", s.platform, "--release", "x"}, 1, "", "ERROR: Invalid release: x\nCAUSED BY: "},
		{[]string{"--system", filepath.Join(s.platform, "missing")}, 1, "", "ERROR: Unable to locate the Java platform\nCAUSED BY: "},
		{[]string{"--system", s.platform}, 1, "", "ERROR: Nothing to scan"},
		{[]string{"--system", s.platform, "--class-path", s.jar, "--release", "17"}, 1, "", "ERROR: Release: 17 not supported\nCAUSED BY: "},
		{[]string{"@" + filepath.Join(s.platform, "missing")}, 1, "", "ERROR: reading argument file"},
	}
	for _, test := range tests {
		status, out, errOut := runArgs(test.args...)
		if status != test.status || !strings.HasPrefix(out, test.stdout) || !strings.Contains(errOut, test.stderr) {
			t.Errorf("run(%q): got status %d, stdout %q, stderr %q; want %d, %q, %q",
				test.args, status, out, errOut, test.status, test.stdout, test.stderr)
		}
	}
}
