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

// Package finder locates native method declarations and calls to restricted
// platform methods in a set of classes.
package finder // import "jnativescan.io/jnativescan/go/scan/finder"

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"jnativescan.io/jnativescan/go/classfile"
	"jnativescan.io/jnativescan/go/scan/fatal"
	"jnativescan.io/jnativescan/go/scan/resolve"
	"jnativescan.io/jnativescan/go/scan/source"
	"jnativescan.io/jnativescan/go/util/log"

	"bitbucket.org/creachadair/stringset"
)

// Annotation descriptors marking restricted platform methods. Signature
// files in ct.sym carry the second form.
var restrictedMarkers = []string{
	"Ljdk/internal/javac/Restricted;",
	"Ljdk/internal/javac/Restricted+Annotation;",
}

// IsRestricted reports whether m carries a restricted marker.
func IsRestricted(m *classfile.Method) bool {
	return slices.ContainsFunc(restrictedMarkers, m.HasAnnotation)
}

// A RestrictedUse is a finding for one method of a scanned class. The
// concrete type is NativeMethodDecl or RestrictedMethodRefs.
type RestrictedUse interface {
	// Method returns the scanned method the finding is about.
	Method() MethodRef

	isRestrictedUse()
}

// NativeMethodDecl reports a method declared native.
type NativeMethodDecl struct {
	Decl MethodRef
}

// RestrictedMethodRefs reports a method whose body invokes restricted
// methods. Referees are distinct and sorted by Compare.
type RestrictedMethodRefs struct {
	Referent MethodRef
	Referees []MethodRef
}

func (n NativeMethodDecl) Method() MethodRef     { return n.Decl }
func (r RestrictedMethodRefs) Method() MethodRef { return r.Referent }

func (NativeMethodDecl) isRestrictedUse()     {}
func (RestrictedMethodRefs) isRestrictedUse() {}

// ClassResult holds the findings for one class, in method declaration order.
type ClassResult struct {
	Class classfile.ClassDesc
	Uses  []RestrictedUse
}

// SourceResult holds the classes of one source that have findings, sorted by
// qualified name.
type SourceResult struct {
	Source  source.Source
	Classes []ClassResult
}

// Results are the findings of a scan, sorted by source path. Sources and
// classes without findings are absent.
type Results []SourceResult

// Modules returns the distinct module names of the sources in r, in order.
func (r Results) Modules() []string {
	seen := stringset.New()
	var out []string
	for _, s := range r {
		if name := s.Source.ModuleName(); !seen.Contains(name) {
			seen.Add(name)
			out = append(out, name)
		}
	}
	return out
}

// Diagnostics collects the distinct problems that did not stop a scan.
type Diagnostics struct {
	seen stringset.Set
	msgs []string
}

// Addf records a diagnostic, unless an identical one was recorded before.
func (d *Diagnostics) Addf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if d.seen.Contains(msg) {
		return
	}
	if d.seen == nil {
		d.seen = stringset.New()
	}
	d.seen.Add(msg)
	d.msgs = append(d.msgs, msg)
}

// Messages returns the diagnostics in the order they were first recorded.
func (d *Diagnostics) Messages() []string { return d.msgs }

// Len returns the number of diagnostics.
func (d *Diagnostics) Len() int { return len(d.msgs) }

// A Finder scans classes for restricted uses. A Finder is not safe for
// concurrent use.
type Finder struct {
	diags  *Diagnostics
	scan   *resolve.SimpleResolver
	system resolve.Resolver

	restricted map[MethodRef]bool
}

// New returns a Finder for the classes of classesToScan, checking invoked
// methods against the platform classes of system. Problems confined to a
// single method are recorded in diags.
func New(diags *Diagnostics, classesToScan *resolve.SimpleResolver, system resolve.Resolver) *Finder {
	return &Finder{
		diags:      diags,
		scan:       classesToScan,
		system:     system,
		restricted: make(map[MethodRef]bool),
	}
}

// FindAll scans every class. Errors are fatal; the results are incomplete
// when diagnostics were recorded.
func (f *Finder) FindAll(ctx context.Context) (Results, error) {
	bySource := make(map[source.Source][]ClassResult)
	err := f.scan.ForEach(func(desc classfile.ClassDesc, info resolve.Info) error {
		uses, err := f.findInClass(ctx, desc, info.Class)
		if err != nil {
			return err
		}
		if len(uses) > 0 {
			bySource[info.Source] = append(bySource[info.Source], ClassResult{Class: desc, Uses: uses})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(Results, 0, len(bySource))
	for src, classes := range bySource {
		sort.Slice(classes, func(i, j int) bool {
			return classes[i].Class.QualName() < classes[j].Class.QualName()
		})
		out = append(out, SourceResult{Source: src, Classes: classes})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Source.Path() < out[j].Source.Path() })
	log.Infof("Found restricted uses in %d sources", len(out))
	return out, nil
}

func (f *Finder) findInClass(ctx context.Context, desc classfile.ClassDesc, cf *classfile.ClassFile) ([]RestrictedUse, error) {
	var uses []RestrictedUse
	for _, m := range cf.Methods {
		ref := OfMethod(desc, m)
		if m.IsNative() {
			uses = append(uses, NativeMethodDecl{Decl: ref})
			continue
		}
		referees, err := f.findInMethod(ctx, m)
		if fatal.Is(err) {
			return nil, err
		} else if err != nil {
			f.diags.Addf("Error while processing method: %s: %v", ref, err)
			continue
		}
		if len(referees) > 0 {
			uses = append(uses, RestrictedMethodRefs{Referent: ref, Referees: referees})
		}
	}
	return uses, nil
}

func (f *Finder) findInMethod(ctx context.Context, m *classfile.Method) ([]MethodRef, error) {
	var referees []MethodRef
	err := m.Code.Instructions(func(in classfile.Instruction) error {
		if in.Method == nil {
			return nil
		}
		target := OfInvoke(*in.Method)
		ok, err := f.isRestricted(ctx, target)
		if ok {
			referees = append(referees, target)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(referees, Compare)
	return slices.Compact(referees), nil
}

// isRestricted reports whether ref is a platform method carrying a restricted
// marker. Only the owner named by ref is consulted; methods it inherits are
// not restricted.
func (f *Finder) isRestricted(ctx context.Context, ref MethodRef) (bool, error) {
	if ok, found := f.restricted[ref]; found {
		return ok, nil
	}
	if ref.Owner.IsArray() {
		f.restricted[ref] = false
		return false, nil
	}
	info, found, err := f.system.Lookup(ctx, ref.Owner)
	if err != nil {
		return false, err
	}
	ok := false
	if found {
		if m := info.Class.FindMethod(ref.Name, ref.Type); m != nil {
			ok = IsRestricted(m)
		}
	}
	f.restricted[ref] = ok
	return ok, nil
}
