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

// Package resolve maps class descriptors to parsed class files, either for
// the classes to scan or for the classes of the platform.
package resolve // import "jnativescan.io/jnativescan/go/scan/resolve"

import (
	"context"
	"sort"

	"jnativescan.io/jnativescan/go/classfile"
	"jnativescan.io/jnativescan/go/scan/fatal"
	"jnativescan.io/jnativescan/go/scan/source"
	"jnativescan.io/jnativescan/go/util/log"
)

// Info is a resolved class and the source it was read from. Source is nil
// for platform classes.
type Info struct {
	Source source.Source
	Class  *classfile.ClassFile
}

// A Resolver looks up classes by descriptor.
type Resolver interface {
	// Lookup returns the class described by desc, reporting false if the
	// resolver does not know it. Errors are fatal.
	Lookup(ctx context.Context, desc classfile.ClassDesc) (Info, bool, error)
}

// SimpleResolver holds every class of a set of sources.
type SimpleResolver struct {
	classes map[classfile.ClassDesc]Info
}

var _ Resolver = (*SimpleResolver)(nil)

// ForSources reads and parses every class file of sources, selecting the
// entries of multi-release jars for release. When a class occurs more than
// once the last occurrence wins. A source that cannot be read or a class
// file that cannot be parsed is a fatal error.
func ForSources(ctx context.Context, sources []source.Source, release int) (*SimpleResolver, error) {
	r := &SimpleResolver{classes: make(map[classfile.ClassDesc]Info)}
	for _, src := range sources {
		err := src.ClassFiles(ctx, release, func(name string, data []byte) error {
			cf, err := classfile.Parse(data)
			if err != nil {
				return fatal.Wrap(err, "Error while parsing class file %s in %s", name, src.Path())
			}
			if prev, ok := r.classes[cf.ThisClass]; ok {
				log.Infof("Class %s of %s replaces the one of %s", cf.ThisClass.QualName(), src.Path(), prev.Source.Path())
			}
			r.classes[cf.ThisClass] = Info{Source: src, Class: cf}
			return nil
		})
		if fatal.Is(err) {
			return nil, err
		} else if err != nil {
			return nil, fatal.Wrap(err, "Error while reading class files from %s", src.Path())
		}
	}
	return r, nil
}

// Lookup implements Resolver. It never fails.
func (r *SimpleResolver) Lookup(_ context.Context, desc classfile.ClassDesc) (Info, bool, error) {
	info, ok := r.classes[desc]
	return info, ok, nil
}

// Len returns the number of classes.
func (r *SimpleResolver) Len() int { return len(r.classes) }

// ForEach calls fn for each class in descriptor order, stopping at the first
// error, which is returned.
func (r *SimpleResolver) ForEach(fn func(classfile.ClassDesc, Info) error) error {
	descs := make([]classfile.ClassDesc, 0, len(r.classes))
	for d := range r.classes {
		descs = append(descs, d)
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i] < descs[j] })
	for _, d := range descs {
		if err := fn(d, r.classes[d]); err != nil {
			return err
		}
	}
	return nil
}
