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

// Package source enumerates the class files of the inputs to a scan: jars
// and directories on the class path, and resolved modules.
package source // import "jnativescan.io/jnativescan/go/scan/source"

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jnativescan.io/jnativescan/go/module"
	"jnativescan.io/jnativescan/go/platform/jar"
	"jnativescan.io/jnativescan/go/platform/vfs"

	"github.com/hashicorp/go-multierror"
)

// UnnamedModule is the module name reported for class path sources.
const UnnamedModule = "ALL-UNNAMED"

// A ClassFunc receives the resource name ("com/example/Foo.class") and
// contents of one class file. Returning an error stops the scan.
type ClassFunc func(name string, data []byte) error

// A Source is one input of a scan. The implementations are *Module,
// *ClassPathJar and *ClassPathDirectory.
type Source interface {
	// ModuleName returns the name of the module the source belongs to, or
	// UnnamedModule.
	ModuleName() string

	// Path returns the location of the source in the file system.
	Path() string

	// ClassFiles calls fn for each class file of the source, selecting the
	// entries of multi-release jars for the given feature release. The
	// underlying container is open only for the duration of the call. An
	// error returned by fn is returned unchanged.
	ClassFiles(ctx context.Context, release int, fn ClassFunc) error

	isSource()
}

// Module is a resolved named module.
type Module struct{ Ref *module.Reference }

// ModuleName implements part of Source.
func (m *Module) ModuleName() string { return m.Ref.Name() }

// Path implements part of Source.
func (m *Module) Path() string { return m.Ref.Location }

// ClassFiles implements part of Source. Multi-release entries are selected
// for the release the module finder was created with.
func (m *Module) ClassFiles(ctx context.Context, _ int, fn ClassFunc) (err error) {
	r, err := m.Ref.Open(ctx)
	if err != nil {
		return err
	}
	defer closeInto(&err, r)

	names, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if !isClass(name) {
			continue
		}
		data, err := r.Read(ctx, name)
		if err != nil {
			return err
		}
		if err := fn(name, data); err != nil {
			return err
		}
	}
	return nil
}

func (*Module) isSource() {}

// ClassPathJar is a jar file on the class path.
type ClassPathJar struct{ File string }

// ModuleName implements part of Source.
func (*ClassPathJar) ModuleName() string { return UnnamedModule }

// Path implements part of Source.
func (j *ClassPathJar) Path() string { return j.File }

// ClassFiles implements part of Source.
func (j *ClassPathJar) ClassFiles(ctx context.Context, release int, fn ClassFunc) (err error) {
	f, err := jar.Open(ctx, j.File)
	if err != nil {
		return err
	}
	defer closeInto(&err, f)

	for _, e := range f.Entries(release) {
		if !isClass(e.Name) {
			continue
		}
		data, err := f.Read(ctx, e)
		if err != nil {
			return err
		}
		if err := fn(e.Name, data); err != nil {
			return err
		}
	}
	return nil
}

func (*ClassPathJar) isSource() {}

// ClassPathDirectory is a directory of class files on the class path.
type ClassPathDirectory struct{ Dir string }

// ModuleName implements part of Source.
func (*ClassPathDirectory) ModuleName() string { return UnnamedModule }

// Path implements part of Source.
func (d *ClassPathDirectory) Path() string { return d.Dir }

// ClassFiles implements part of Source. Files are visited in lexical order.
func (d *ClassPathDirectory) ClassFiles(ctx context.Context, _ int, fn ClassFunc) error {
	return vfs.Walk(ctx, d.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(d.Dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !isClass(name) {
			return nil
		}
		data, err := vfs.ReadFile(ctx, path)
		if err != nil {
			return err
		}
		return fn(name, data)
	})
}

func (*ClassPathDirectory) isSource() {}

// isClass reports whether a resource is a class file to scan. Module
// declarations are not classes.
func isClass(name string) bool {
	if name == module.InfoClass || strings.HasSuffix(name, "/"+module.InfoClass) {
		return false
	}
	return strings.HasSuffix(name, ".class")
}

// closeInto closes c, merging a close error into *err.
func closeInto(err *error, c io.Closer) {
	cerr := c.Close()
	switch {
	case cerr == nil:
	case *err == nil:
		*err = cerr
	default:
		*err = multierror.Append(*err, cerr)
	}
}
