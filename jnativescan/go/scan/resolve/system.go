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

package resolve

import (
	"context"
	"errors"

	"jnativescan.io/jnativescan/go/classfile"
	"jnativescan.io/jnativescan/go/module"
	"jnativescan.io/jnativescan/go/platform/system"
	"jnativescan.io/jnativescan/go/scan/fatal"
	"jnativescan.io/jnativescan/go/util/log"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of platform classes, found or not, that a
// SystemResolver remembers.
const DefaultCacheSize = 4096

// SystemResolver loads platform classes on demand. A class is known if its
// package is exported without qualification by a system module.
type SystemResolver struct {
	platform system.Platform
	packages map[string]string // dotted package name → module

	// Values are nil for descriptors that name no class of an unqualified
	// export: arrays, primitives and classes of other packages.
	cache *lru.Cache[classfile.ClassDesc, *classfile.ClassFile]
}

var _ Resolver = (*SystemResolver)(nil)

// ForSystem returns a resolver for the classes of p, whose modules are
// located by finder.
func ForSystem(ctx context.Context, p system.Platform, finder module.Finder) (*SystemResolver, error) {
	return ForSystemSize(ctx, p, finder, DefaultCacheSize)
}

// ForSystemSize is ForSystem with a cache of the given size.
func ForSystemSize(ctx context.Context, p system.Platform, finder module.Finder, size int) (*SystemResolver, error) {
	cache, err := lru.New[classfile.ClassDesc, *classfile.ClassFile](size)
	if err != nil {
		return nil, err
	}
	refs, err := finder.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	r := &SystemResolver{platform: p, packages: make(map[string]string), cache: cache}
	for _, ref := range refs {
		for _, e := range ref.Descriptor.Exports {
			if !e.IsQualified() {
				r.packages[e.Package] = ref.Name()
			}
		}
	}
	log.Infof("System resolver: %d exported packages in %d modules", len(r.packages), len(refs))
	return r, nil
}

// Lookup implements Resolver. A class of an exported package that the owning
// module does not have is a fatal error.
func (r *SystemResolver) Lookup(ctx context.Context, desc classfile.ClassDesc) (Info, bool, error) {
	if cf, ok := r.cache.Get(desc); ok {
		return Info{Class: cf}, cf != nil, nil
	}
	mod, ok := r.packages[desc.PackageName()]
	if !desc.IsClassOrInterface() || !ok {
		r.cache.Add(desc, nil)
		return Info{}, false, nil
	}

	data, err := r.platform.ClassFile(ctx, mod, desc.InternalName())
	if errors.Is(err, system.ErrNotFound) {
		return Info{}, false, fatal.Wrap(err, "System class can not be found: %s", desc.QualName())
	} else if err != nil {
		return Info{}, false, fatal.Wrap(err, "Error while reading system class: %s", desc.QualName())
	}
	cf, err := classfile.Parse(data)
	if err != nil {
		return Info{}, false, fatal.Wrap(err, "Error while parsing system class: %s", desc.QualName())
	}
	r.cache.Add(desc, cf)
	return Info{Class: cf}, true, nil
}
