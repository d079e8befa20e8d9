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
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"jnativescan.io/jnativescan/go/platform/jar"
	"jnativescan.io/jnativescan/go/platform/vfs"
	"jnativescan.io/jnativescan/go/util/log"

	"bitbucket.org/creachadair/stringset"
)

// A Finder locates modules.
type Finder interface {
	// Find returns the module with the given name, reporting false if there is
	// no such module.
	Find(ctx context.Context, name string) (*Reference, bool, error)

	// FindAll returns every module the finder can locate, sorted by name.
	FindAll(ctx context.Context) ([]*Reference, error)
}

// OfReferences returns a Finder for a fixed set of modules. When two
// references share a name the first one wins.
func OfReferences(refs ...*Reference) Finder {
	f := &refFinder{byName: make(map[string]*Reference)}
	for _, r := range refs {
		if _, ok := f.byName[r.Name()]; !ok {
			f.byName[r.Name()] = r
			f.all = append(f.all, r)
		}
	}
	sortReferences(f.all)
	return f
}

type refFinder struct {
	byName map[string]*Reference
	all    []*Reference
}

func (f *refFinder) Find(_ context.Context, name string) (*Reference, bool, error) {
	r, ok := f.byName[name]
	return r, ok, nil
}

func (f *refFinder) FindAll(context.Context) ([]*Reference, error) { return f.all, nil }

// OfPaths returns a Finder that locates modules on a module path. Each entry
// is a modular or automatic jar, an exploded module directory (a directory
// holding module-info.class), or a directory whose immediate children are
// such modules. When a module name occurs in more than one entry the first
// entry wins; the same name twice within one directory is an error. Entries
// of multi-release jars are selected for the given release.
//
// The entries are read on first use.
func OfPaths(release int, paths ...string) Finder {
	return &pathFinder{release: release, paths: paths}
}

type pathFinder struct {
	release int
	paths   []string

	scanned bool
	err     error
	refs    Finder
}

func (f *pathFinder) Find(ctx context.Context, name string) (*Reference, bool, error) {
	if err := f.scan(ctx); err != nil {
		return nil, false, err
	}
	return f.refs.Find(ctx, name)
}

func (f *pathFinder) FindAll(ctx context.Context) ([]*Reference, error) {
	if err := f.scan(ctx); err != nil {
		return nil, err
	}
	return f.refs.FindAll(ctx)
}

func (f *pathFinder) scan(ctx context.Context) error {
	if f.scanned {
		return f.err
	}
	f.scanned = true
	var all []*Reference
	for _, entry := range f.paths {
		refs, err := f.readEntry(ctx, entry)
		if err != nil {
			f.err = err
			return err
		}
		all = append(all, refs...)
	}
	f.refs = OfReferences(all...)
	return nil
}

// readEntry reads the modules of one module path entry.
func (f *pathFinder) readEntry(ctx context.Context, entry string) ([]*Reference, error) {
	fi, err := vfs.Stat(ctx, entry)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("Module path entry %s does not exist", entry)
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if !fi.IsDir() || vfs.IsRegular(ctx, filepath.Join(entry, InfoClass)) {
		ref, err := f.readModule(ctx, entry)
		if err != nil || ref == nil {
			return nil, err
		}
		return []*Reference{ref}, nil
	}

	children, err := vfs.Glob(ctx, filepath.Join(entry, "*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(children)
	var refs []*Reference
	seen := make(map[string]string)
	for _, child := range children {
		ref, err := f.readModule(ctx, child)
		if err != nil {
			return nil, err
		} else if ref == nil {
			continue
		}
		if prev, ok := seen[ref.Name()]; ok {
			return nil, fmt.Errorf("two versions of module %s found in %s (%s and %s)",
				ref.Name(), entry, filepath.Base(prev), filepath.Base(child))
		}
		seen[ref.Name()] = child
		refs = append(refs, ref)
	}
	return refs, nil
}

// readModule returns the module at path, or nil if path is not a module.
func (f *pathFinder) readModule(ctx context.Context, path string) (*Reference, error) {
	fi, err := vfs.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	switch {
	case fi.IsDir():
		if !vfs.IsRegular(ctx, filepath.Join(path, InfoClass)) {
			return nil, nil
		}
		return readExploded(ctx, path)
	case !fi.Mode().IsRegular():
		return nil, nil
	case strings.HasSuffix(path, ".jar"):
		ref, err := f.readJar(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("error reading module %s: %v", path, err)
		}
		return ref, nil
	case strings.HasSuffix(path, ".jmod"):
		return nil, fmt.Errorf("error reading module %s: JMOD format not supported on the module path", path)
	}
	return nil, nil
}

func readExploded(ctx context.Context, dir string) (*Reference, error) {
	r := dirReader{dir}
	data, err := r.Read(ctx, InfoClass)
	if err != nil {
		return nil, err
	}
	d, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("error reading module %s: %v", dir, err)
	}
	names, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	d.addPackages(names)
	return NewReference(d, dir, func(context.Context) (Reader, error) { return dirReader{dir}, nil }), nil
}

func (f *pathFinder) readJar(ctx context.Context, path string) (*Reference, error) {
	j, err := jar.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer j.Close()

	var (
		names   []string
		info    jar.Entry
		modular bool
	)
	for _, e := range j.Entries(f.release) {
		names = append(names, e.Name)
		if e.Name == InfoClass {
			info, modular = e, true
		}
	}

	var d *Descriptor
	if modular {
		data, err := j.Read(ctx, info)
		if err != nil {
			return nil, err
		}
		if d, err = Read(data); err != nil {
			return nil, err
		}
	} else {
		name, version, err := AutomaticName(path, j.Manifest)
		if err != nil {
			return nil, err
		}
		d = &Descriptor{Name: name, Version: version, Automatic: true}
		d.addPackages(names) // providers are checked against the packages
		if d.Provides, err = automaticProvides(ctx, j, d); err != nil {
			return nil, err
		}
	}
	d.addPackages(names)

	release := f.release
	return NewReference(d, path, func(ctx context.Context) (Reader, error) {
		return openJar(ctx, path, release)
	}), nil
}

const servicesDir = "META-INF/services/"

// automaticProvides returns the service implementations declared by the
// provider-configuration files of an automatic module. Providers outside the
// module's packages are skipped.
func automaticProvides(ctx context.Context, j *jar.Jar, d *Descriptor) ([]Provides, error) {
	pkgs := stringset.New(d.Packages...)
	var out []Provides
	for _, name := range j.Names() {
		service, ok := strings.CutPrefix(name, servicesDir)
		if !ok || service == "" || strings.Contains(service, "/") {
			continue
		}
		data, err := j.ReadFile(ctx, name)
		if err != nil {
			return nil, err
		}
		var with []string
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			line, _, _ := strings.Cut(sc.Text(), "#")
			impl := strings.TrimSpace(line)
			if impl == "" {
				continue
			}
			if i := strings.LastIndexByte(impl, '.'); i < 0 || !pkgs.Contains(impl[:i]) {
				log.Infof("%s: provider %s of %s is not in module %s", j.Path, impl, service, d.Name)
				continue
			}
			with = append(with, impl)
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		if len(with) > 0 {
			out = append(out, Provides{Service: service, With: with})
		}
	}
	return out, nil
}

var (
	dashVersion   = regexp.MustCompile(`-(\d+(\.|$))`)
	nonAlphaNum   = regexp.MustCompile(`[^A-Za-z0-9]`)
	repeatingDots = regexp.MustCompile(`\.{2,}`)
)

// AutomaticName returns the module name and version of an automatic module
// packaged as the jar file at path. The name is the Automatic-Module-Name
// manifest attribute if present. Otherwise it is derived from the file name:
// the ".jar" suffix is dropped, a version starting at the first "-<digit>" is
// split off, every non-alphanumeric character becomes a dot, repeated dots are
// collapsed and leading and trailing dots are removed.
func AutomaticName(path string, m jar.Manifest) (name, version string, err error) {
	fn := strings.TrimSuffix(filepath.Base(path), ".jar")
	if loc := dashVersion.FindStringIndex(fn); loc != nil {
		version = fn[loc[0]+1:]
		fn = fn[:loc[0]]
	}
	if name = strings.TrimSpace(m.Get(jar.AttrAutomaticModuleName)); name == "" {
		name = nonAlphaNum.ReplaceAllString(fn, ".")
		name = repeatingDots.ReplaceAllString(name, ".")
		name = strings.Trim(name, ".")
	}
	if name == "" {
		return "", "", fmt.Errorf("unable to derive module descriptor for %s", path)
	}
	if err := checkModuleName(name); err != nil {
		return "", "", fmt.Errorf("unable to derive module descriptor for %s: %v", path, err)
	}
	return name, version, nil
}

func checkModuleName(name string) error {
	for _, part := range strings.Split(name, ".") {
		if !isJavaIdentifier(part) {
			return fmt.Errorf("invalid module name: %q is not a Java identifier", part)
		}
		if javaKeywords.Contains(part) {
			return fmt.Errorf("invalid module name: %q is a reserved word", part)
		}
	}
	return nil
}

func isJavaIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return s != ""
}

var javaKeywords = stringset.New(
	"_", "abstract", "assert", "boolean", "break", "byte", "case", "catch",
	"char", "class", "const", "continue", "default", "do", "double", "else",
	"enum", "extends", "false", "final", "finally", "float", "for", "goto",
	"if", "implements", "import", "instanceof", "int", "interface", "long",
	"native", "new", "null", "package", "private", "protected", "public",
	"return", "short", "static", "strictfp", "super", "switch",
	"synchronized", "this", "throw", "throws", "transient", "true", "try",
	"void", "volatile", "while",
)

func sortReferences(refs []*Reference) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name() < refs[j].Name() })
}
