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

// Package jar reads JAR files: the main section of the manifest and the set of
// entries visible to a given platform release.
//
// In a multi-release jar (one whose manifest sets "Multi-Release: true") an
// entry "META-INF/versions/N/<name>" replaces the base entry <name> for every
// release >= N. Jars that are not multi-release expose every entry as-is.
package jar // import "jnativescan.io/jnativescan/go/platform/jar"

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"jnativescan.io/jnativescan/go/platform/vfs/zip"
)

// ManifestName is the entry name of the JAR manifest.
const ManifestName = "META-INF/MANIFEST.MF"

const versionsDir = "META-INF/versions/"

// minVersion is the first release supporting multi-release jars.
const minVersion = 9

// Latest is the release selecting the highest version of each entry of a
// multi-release jar.
const Latest = math.MaxInt32

// A Jar is an opened JAR file. It must be closed when no longer needed.
type Jar struct {
	*zip.File

	// Manifest is empty when the jar has no manifest.
	Manifest Manifest
}

// Open opens the JAR file at path and reads its manifest.
func Open(ctx context.Context, path string) (*Jar, error) {
	f, err := zip.OpenFile(ctx, path)
	if err != nil {
		return nil, err
	}
	m := make(Manifest)
	if data, err := f.ReadFile(ctx, ManifestName); err == nil {
		if m, err = ParseManifest(data); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %v", ManifestName, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		f.Close()
		return nil, fmt.Errorf("reading %s: %v", ManifestName, err)
	}
	return &Jar{File: f, Manifest: m}, nil
}

// IsMultiRelease reports whether the manifest marks j as a multi-release jar.
func (j *Jar) IsMultiRelease() bool {
	return strings.EqualFold(strings.TrimSpace(j.Manifest.Get(AttrMultiRelease)), "true")
}

// ClassPath returns the whitespace-separated entries of the Class-Path
// manifest attribute, unresolved.
func (j *Jar) ClassPath() []string { return strings.Fields(j.Manifest.Get(AttrClassPath)) }

// An Entry maps the name of a jar resource to the archive entry holding its
// contents for some release.
type Entry struct {
	Name string // e.g. "com/example/Foo.class"
	Path string // e.g. "META-INF/versions/17/com/example/Foo.class"
}

// Entries returns the entries of j visible to the given release feature
// number, in the order their names first occur in the archive.
func (j *Jar) Entries(release int) []Entry {
	names := j.Names()
	if !j.IsMultiRelease() {
		entries := make([]Entry, len(names))
		for i, name := range names {
			entries[i] = Entry{Name: name, Path: name}
		}
		return entries
	}

	type best struct {
		path    string
		version int
	}
	var order []string
	chosen := make(map[string]best)
	for _, path := range names {
		name, version, ok := splitVersioned(path)
		if !ok || version > release {
			continue
		}
		cur, seen := chosen[name]
		if !seen {
			order = append(order, name)
		}
		if !seen || version > cur.version {
			chosen[name] = best{path, version}
		}
	}
	entries := make([]Entry, len(order))
	for i, name := range order {
		entries[i] = Entry{Name: name, Path: chosen[name].path}
	}
	return entries
}

// Read returns the contents of e.
func (j *Jar) Read(ctx context.Context, e Entry) ([]byte, error) {
	return j.ReadFile(ctx, e.Path)
}

// splitVersioned returns the resource name and version of an entry of a
// multi-release jar. Base entries have version 0. Entries under
// META-INF/versions/ that do not name a supported version are rejected.
func splitVersioned(path string) (name string, version int, ok bool) {
	rest, ok := strings.CutPrefix(path, versionsDir)
	if !ok {
		return path, 0, true
	}
	i := strings.IndexByte(rest, '/')
	if i <= 0 || i == len(rest)-1 {
		return "", 0, false
	}
	v, err := strconv.Atoi(rest[:i])
	if err != nil || v < minVersion {
		return "", 0, false
	}
	return rest[i+1:], v, true
}
