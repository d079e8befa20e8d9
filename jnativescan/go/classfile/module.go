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

package classfile

import "fmt"

// Flags of the Module attribute and its requires entries.
const (
	AccOpen        = 0x0020
	AccTransitive  = 0x0020
	AccStaticPhase = 0x0040
	AccMandated    = 0x8000
)

// ModuleAttr is the decoded Module attribute of a module-info class.
// Package names are in internal form ("java/lang").
type ModuleAttr struct {
	Name     string
	Flags    uint16
	Version  string
	Requires []Requires
	Exports  []Exports
	Opens    []Exports
	Uses     []ClassDesc
	Provides []Provides
}

// Requires is a module dependence.
type Requires struct {
	Module  string
	Flags   uint16
	Version string
}

// IsStatic reports whether the dependence is only required at compile time.
func (r Requires) IsStatic() bool { return r.Flags&AccStaticPhase != 0 }

// IsTransitive reports whether the dependence is re-exported.
func (r Requires) IsTransitive() bool { return r.Flags&AccTransitive != 0 }

// Exports is an exported (or opened) package, qualified when To is non-empty.
type Exports struct {
	Package string
	Flags   uint16
	To      []string
}

// IsQualified reports whether e only exports to specific modules.
func (e Exports) IsQualified() bool { return len(e.To) > 0 }

// Provides is a service implementation declaration.
type Provides struct {
	Service ClassDesc
	With    []ClassDesc
}

func parseModule(body []byte, cp *ConstantPool) (*ModuleAttr, error) {
	r := &reader{data: body}
	var err error
	m := new(ModuleAttr)
	nameIdx := r.u2()
	m.Flags = r.u2()
	versionIdx := r.u2()
	if r.err != nil {
		return nil, r.err
	}
	if m.Name, err = cp.ModuleName(nameIdx); err != nil {
		return nil, err
	}
	if m.Version, err = optionalUTF8(cp, versionIdx); err != nil {
		return nil, err
	}

	for n := r.u2(); n > 0 && r.err == nil; n-- {
		idx, flags, vIdx := r.u2(), r.u2(), r.u2()
		if r.err != nil {
			break
		}
		req := Requires{Flags: flags}
		if req.Module, err = cp.ModuleName(idx); err != nil {
			return nil, fmt.Errorf("requires: %v", err)
		}
		if req.Version, err = optionalUTF8(cp, vIdx); err != nil {
			return nil, fmt.Errorf("requires %s: %v", req.Module, err)
		}
		m.Requires = append(m.Requires, req)
	}

	if m.Exports, err = r.exports(cp); err != nil {
		return nil, fmt.Errorf("exports: %v", err)
	}
	if m.Opens, err = r.exports(cp); err != nil {
		return nil, fmt.Errorf("opens: %v", err)
	}

	for n := r.u2(); n > 0 && r.err == nil; n-- {
		name, err := cp.ClassName(r.u2())
		if err != nil {
			return nil, fmt.Errorf("uses: %v", err)
		}
		m.Uses = append(m.Uses, OfInternalName(name))
	}

	for n := r.u2(); n > 0 && r.err == nil; n-- {
		svc, err := cp.ClassName(r.u2())
		if err != nil {
			return nil, fmt.Errorf("provides: %v", err)
		}
		p := Provides{Service: OfInternalName(svc)}
		for k := r.u2(); k > 0 && r.err == nil; k-- {
			impl, err := cp.ClassName(r.u2())
			if err != nil {
				return nil, fmt.Errorf("provides %s with: %v", svc, err)
			}
			p.With = append(p.With, OfInternalName(impl))
		}
		m.Provides = append(m.Provides, p)
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func (r *reader) exports(cp *ConstantPool) ([]Exports, error) {
	var out []Exports
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		idx, flags := r.u2(), r.u2()
		if r.err != nil {
			break
		}
		pkg, err := cp.PackageName(idx)
		if err != nil {
			return nil, err
		}
		e := Exports{Package: pkg, Flags: flags}
		for k := r.u2(); k > 0 && r.err == nil; k-- {
			to, err := cp.ModuleName(r.u2())
			if err != nil {
				return nil, fmt.Errorf("%s to: %v", pkg, err)
			}
			e.To = append(e.To, to)
		}
		out = append(out, e)
	}
	return out, r.err
}

func parseModulePackages(body []byte, cp *ConstantPool) ([]string, error) {
	r := &reader{data: body}
	var pkgs []string
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		pkg, err := cp.PackageName(r.u2())
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, r.err
}

func optionalUTF8(cp *ConstantPool, i uint16) (string, error) {
	if i == 0 {
		return "", nil
	}
	return cp.UTF8(i)
}
