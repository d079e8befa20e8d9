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

// Package module implements the parts of the Java module system needed to
// decide which modules of a module path are scanned: module descriptors,
// automatic modules, module finders and resolution with service binding.
package module // import "jnativescan.io/jnativescan/go/module"

import (
	"fmt"
	"path"
	"strings"

	"jnativescan.io/jnativescan/go/classfile"

	"bitbucket.org/creachadair/stringset"
)

// InfoClass is the resource name of a module declaration.
const InfoClass = "module-info.class"

// A Descriptor describes a named module. Package and class names are
// dotted ("java.lang", "java.lang.Runnable").
type Descriptor struct {
	Name      string
	Version   string
	Open      bool
	Automatic bool

	Requires []Requires
	Exports  []Exports
	Uses     []string
	Provides []Provides

	// Packages lists every package of the module, sorted.
	Packages []string
}

// Requires is a dependence on another module.
type Requires struct {
	Name       string
	Static     bool
	Transitive bool
}

// Exports is an exported package. A qualified export names its target
// modules in To.
type Exports struct {
	Package string
	To      []string
}

// IsQualified reports whether e only exports to specific modules.
func (e Exports) IsQualified() bool { return len(e.To) > 0 }

// Provides declares the implementations of a service.
type Provides struct {
	Service string
	With    []string
}

// Read decodes a module-info class file.
func Read(data []byte) (*Descriptor, error) {
	cf, err := classfile.Parse(data)
	if err != nil {
		return nil, err
	}
	return FromClassFile(cf)
}

// FromClassFile returns the descriptor declared by a parsed module-info class.
func FromClassFile(cf *classfile.ClassFile) (*Descriptor, error) {
	if !cf.IsModule() || cf.Module == nil {
		return nil, fmt.Errorf("%s is not a module declaration", cf.ThisClass.QualName())
	}
	m := cf.Module
	d := &Descriptor{
		Name:    m.Name,
		Version: m.Version,
		Open:    m.Flags&classfile.AccOpen != 0,
	}
	for _, r := range m.Requires {
		d.Requires = append(d.Requires, Requires{Name: r.Module, Static: r.IsStatic(), Transitive: r.IsTransitive()})
	}
	pkgs := stringset.New()
	for _, e := range m.Exports {
		pkg := dotted(e.Package)
		d.Exports = append(d.Exports, Exports{Package: pkg, To: e.To})
		pkgs.Add(pkg)
	}
	for _, u := range m.Uses {
		d.Uses = append(d.Uses, u.QualName())
	}
	for _, p := range m.Provides {
		pr := Provides{Service: p.Service.QualName()}
		for _, w := range p.With {
			pr.With = append(pr.With, w.QualName())
			pkgs.Add(w.PackageName())
		}
		d.Provides = append(d.Provides, pr)
	}
	for _, pkg := range cf.ModulePackages {
		pkgs.Add(dotted(pkg))
	}
	pkgs.Discard("")
	d.Packages = pkgs.Elements()
	return d, nil
}

// addPackages merges the packages of the named class resources into d.
func (d *Descriptor) addPackages(resources []string) {
	pkgs := stringset.New(d.Packages...)
	for _, name := range resources {
		if pkg, ok := classPackage(name); ok {
			pkgs.Add(pkg)
		}
	}
	d.Packages = pkgs.Elements()
}

// String renders d in module declaration syntax.
func (d *Descriptor) String() string {
	var b strings.Builder
	switch {
	case d.Automatic:
		b.WriteString("automatic module ")
	case d.Open:
		b.WriteString("open module ")
	default:
		b.WriteString("module ")
	}
	b.WriteString(d.Name)
	if d.Version != "" {
		b.WriteString("@" + d.Version)
	}
	b.WriteString(" {\n")
	for _, r := range d.Requires {
		b.WriteString("  requires ")
		if r.Static {
			b.WriteString("static ")
		}
		if r.Transitive {
			b.WriteString("transitive ")
		}
		b.WriteString(r.Name + ";\n")
	}
	for _, e := range d.Exports {
		b.WriteString("  exports " + e.Package)
		if e.IsQualified() {
			b.WriteString(" to " + strings.Join(e.To, ", "))
		}
		b.WriteString(";\n")
	}
	for _, u := range d.Uses {
		b.WriteString("  uses " + u + ";\n")
	}
	for _, p := range d.Provides {
		b.WriteString("  provides " + p.Service + " with " + strings.Join(p.With, ", ") + ";\n")
	}
	if len(d.Packages) > 0 {
		b.WriteString("  // packages: " + strings.Join(d.Packages, ", ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}

// classPackage returns the dotted package of a class resource name such as
// "com/example/Foo.class". Resources in the unnamed package, module-info and
// META-INF entries are not part of any package.
func classPackage(name string) (string, bool) {
	if !strings.HasSuffix(name, ".class") || strings.HasPrefix(name, "META-INF/") {
		return "", false
	}
	dir := path.Dir(name)
	if dir == "." || dir == "/" {
		return "", false
	}
	return dotted(dir), true
}

func dotted(internal string) string { return strings.ReplaceAll(internal, "/", ".") }
