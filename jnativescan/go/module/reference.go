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

package module

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"jnativescan.io/jnativescan/go/platform/jar"
	"jnativescan.io/jnativescan/go/platform/vfs"
)

// A Reference is a module located by a Finder.
type Reference struct {
	Descriptor *Descriptor

	// Location is the path of the modular jar or exploded module directory,
	// or "" for modules of the platform.
	Location string

	open func(context.Context) (Reader, error)
}

// NewReference returns a reference to the module described by d. The open
// function, which may be nil, provides access to the module's resources.
func NewReference(d *Descriptor, location string, open func(context.Context) (Reader, error)) *Reference {
	return &Reference{Descriptor: d, Location: location, open: open}
}

// Name returns the module name.
func (r *Reference) Name() string { return r.Descriptor.Name }

// Open returns a reader for the contents of the module. The reader must be
// closed when no longer needed.
func (r *Reference) Open(ctx context.Context) (Reader, error) {
	if r.open == nil {
		return nil, fmt.Errorf("module %s: contents not available", r.Name())
	}
	return r.open(ctx)
}

// A Reader reads the resources of a module.
type Reader interface {
	// List returns the names of the module's resources ("com/example/Foo.class")
	// in a deterministic order.
	List(ctx context.Context) ([]string, error)

	// Read returns the contents of the named resource.
	Read(ctx context.Context, name string) ([]byte, error)

	// Close releases the resources held by the reader.
	Close() error
}

// jarReader reads a modular or automatic jar, resolving the entries of a
// multi-release jar for release once, when the jar is opened.
type jarReader struct {
	jar     *jar.Jar
	names   []string
	entries map[string]jar.Entry
}

func openJar(ctx context.Context, path string, release int) (Reader, error) {
	j, err := jar.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	r := &jarReader{jar: j, entries: make(map[string]jar.Entry)}
	for _, e := range j.Entries(release) {
		r.names = append(r.names, e.Name)
		r.entries[e.Name] = e
	}
	return r, nil
}

func (r *jarReader) List(context.Context) ([]string, error) { return r.names, nil }

func (r *jarReader) Read(ctx context.Context, name string) ([]byte, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", r.jar.Path, name, os.ErrNotExist)
	}
	return r.jar.Read(ctx, e)
}

func (r *jarReader) Close() error { return r.jar.Close() }

// dirReader reads an exploded module directory.
type dirReader struct{ dir string }

func (r dirReader) List(ctx context.Context) ([]string, error) {
	var names []string
	err := vfs.Walk(ctx, r.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(r.dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	return names, err
}

func (r dirReader) Read(ctx context.Context, name string) ([]byte, error) {
	return vfs.ReadFile(ctx, filepath.Join(r.dir, filepath.FromSlash(name)))
}

func (dirReader) Close() error { return nil }
