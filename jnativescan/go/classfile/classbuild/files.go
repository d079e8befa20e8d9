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

package classbuild

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Manifest renders a JAR manifest holding the given main attributes, in
// sorted order, wrapping lines at 72 bytes.
func Manifest(attrs map[string]string) []byte {
	var buf bytes.Buffer
	buf.WriteString("Manifest-Version: 1.0\r\n")
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line := k + ": " + attrs[k]
		for len(line) > 72 {
			buf.WriteString(line[:72] + "\r\n")
			line = " " + line[72:]
		}
		buf.WriteString(line + "\r\n")
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// Zip returns a zip archive holding entries, written in sorted name order.
func Zip(t testing.TB, entries map[string][]byte) []byte {
	t.Helper()
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Create %q: %v", name, err)
		}
		if _, err := f.Write(entries[name]); err != nil {
			t.Fatalf("Write %q: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

// WriteJar writes a jar file at path. A manifest is added when attrs is
// non-nil; classes maps entry names ("com/example/Foo.class") to contents.
func WriteJar(t testing.TB, path string, attrs map[string]string, classes map[string][]byte) string {
	t.Helper()
	entries := make(map[string][]byte, len(classes)+1)
	for name, data := range classes {
		entries[name] = data
	}
	if attrs != nil {
		entries["META-INF/MANIFEST.MF"] = Manifest(attrs)
	}
	WriteFile(t, path, Zip(t, entries))
	return path
}

// WriteJmod writes a .jmod file at path: the "JM" header followed by a zip of
// the given class entries under "classes/".
func WriteJmod(t testing.TB, path string, classes map[string][]byte) string {
	t.Helper()
	entries := make(map[string][]byte, len(classes))
	for name, data := range classes {
		entries["classes/"+name] = data
	}
	WriteFile(t, path, append([]byte{'J', 'M', 1, 0}, Zip(t, entries)...))
	return path
}

// WriteTree writes each entry under dir, creating parent directories.
func WriteTree(t testing.TB, dir string, entries map[string][]byte) string {
	t.Helper()
	for name, data := range entries {
		WriteFile(t, filepath.Join(dir, filepath.FromSlash(name)), data)
	}
	return dir
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// EntryName returns the class file entry name for an internal class name.
func EntryName(internalName string) string {
	return strings.TrimSuffix(internalName, ".class") + ".class"
}
