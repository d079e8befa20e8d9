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

// Package system defines the interface to a description of the Java platform:
// the system modules of a given release and their class files.
//
// A Provider offers one or more releases. Implementations live in the
// subpackages ctsym (a JDK lib/ct.sym archive), jmods (a directory of .jmod
// files) and exploded (a directory of exploded modules).
package system // import "jnativescan.io/jnativescan/go/platform/system"

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"jnativescan.io/jnativescan/go/module"
	"jnativescan.io/jnativescan/go/util/log"
)

var (
	// ErrNotFound is returned by a Platform for missing modules and classes.
	ErrNotFound = errors.New("not found")

	// ErrReleaseNotSupported is returned by a Provider asked for a release it
	// does not offer.
	ErrReleaseNotSupported = errors.New("release not supported")
)

// A Platform describes the system modules of one release. It must be closed
// when no longer needed.
type Platform interface {
	// Modules returns the names of the system modules, sorted.
	Modules(ctx context.Context) ([]string, error)

	// ModuleInfo returns the module-info class of the named module.
	ModuleInfo(ctx context.Context, module string) ([]byte, error)

	// ClassFile returns the class file of a class, given by internal name
	// ("java/lang/Object"), from the named module.
	ClassFile(ctx context.Context, module, internalName string) ([]byte, error)

	Close() error
}

// A Provider yields Platform descriptions for the releases it offers.
type Provider interface {
	// Name describes the provider for diagnostics, e.g. its location.
	Name() string

	// Releases returns the offered releases in increasing order. An empty
	// result means any release is accepted.
	Releases(ctx context.Context) ([]Release, error)

	// Platform opens the description of the given release. The zero Release
	// selects the provider's default. It returns an error wrapping
	// ErrReleaseNotSupported if the release is not offered.
	Platform(ctx context.Context, release Release) (Platform, error)
}

// Supports reports whether release is one of offered, comparing feature
// numbers. Every release is supported when offered is empty.
func Supports(offered []Release, release Release) bool {
	if len(offered) == 0 || release.IsZero() {
		return true
	}
	for _, r := range offered {
		if r.Feature() == release.Feature() {
			return true
		}
	}
	return false
}

// ModuleRelease returns the release recorded as the version of a system
// module such as java.base, or nil if the version is absent or invalid.
func ModuleRelease(version string) []Release {
	if version == "" {
		return nil
	}
	r, err := ParseRelease(version)
	if err != nil {
		log.Infof("Ignoring module version %q: %v", version, err)
		return nil
	}
	return []Release{r}
}

// NotSupported returns an error wrapping ErrReleaseNotSupported.
func NotSupported(provider string, release Release) error {
	return fmt.Errorf("%s: %w: %s", provider, ErrReleaseNotSupported, release)
}

// A Chain is a Provider that tries each of its providers in order.
type Chain []Provider

// Name implements part of Provider.
func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return strings.Join(names, ", ")
}

// Releases implements part of Provider, returning the union of the releases
// of all providers.
func (c Chain) Releases(ctx context.Context) ([]Release, error) {
	seen := make(map[int]bool)
	var out []Release
	for _, p := range c {
		rs, err := p.Releases(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range rs {
			if !seen[r.Feature()] {
				seen[r.Feature()] = true
				out = append(out, r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Feature() < out[j].Feature() })
	return out, nil
}

// Platform implements part of Provider. The zero Release selects the highest
// release offered by any provider.
func (c Chain) Platform(ctx context.Context, release Release) (Platform, error) {
	if release.IsZero() {
		rs, err := c.Releases(ctx)
		if err != nil {
			return nil, err
		}
		if len(rs) > 0 {
			release = rs[len(rs)-1]
		}
	}
	for _, p := range c {
		pf, err := p.Platform(ctx, release)
		if errors.Is(err, ErrReleaseNotSupported) {
			log.Infof("Provider %s does not support release %s", p.Name(), release)
			continue
		} else if err != nil {
			return nil, err
		}
		log.Infof("Using platform %s for release %s", p.Name(), release)
		return pf, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrReleaseNotSupported, release)
}

// Finder returns a module finder for the system modules of p.
func Finder(ctx context.Context, p Platform) (module.Finder, error) {
	names, err := p.Modules(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]*module.Reference, 0, len(names))
	for _, name := range names {
		data, err := p.ModuleInfo(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("reading system module %s: %v", name, err)
		}
		d, err := module.Read(data)
		if err != nil {
			return nil, fmt.Errorf("reading system module %s: %v", name, err)
		}
		refs = append(refs, module.NewReference(d, "", nil))
	}
	return module.OfReferences(refs...), nil
}
