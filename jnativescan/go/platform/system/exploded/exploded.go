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

// Package exploded implements a platform description read from a directory
// of exploded system modules, as found in the "modules" directory of a JDK
// build: <dir>/<module>/module-info.class and <dir>/<module>/<class>.class.
//
// The directory describes a single release, recorded as the version of
// java.base. Any release is accepted when java.base has no version.
package exploded // import "jnativescan.io/jnativescan/go/platform/system/exploded"

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"jnativescan.io/jnativescan/go/module"
	"jnativescan.io/jnativescan/go/platform/system"
	"jnativescan.io/jnativescan/go/platform/vfs"
)

// Provider is a system.Provider for an exploded modules directory.
type Provider struct{ Dir string }

var _ system.Provider = (*Provider)(nil)

// New returns a Provider for the modules in dir.
func New(dir string) *Provider { return &Provider{Dir: dir} }

// Name implements part of system.Provider.
func (p *Provider) Name() string { return "exploded modules " + p.Dir }

// Releases implements part of system.Provider.
func (p *Provider) Releases(ctx context.Context) ([]system.Release, error) {
	data, err := platform{p.Dir}.ModuleInfo(ctx, "java.base")
	if errors.Is(err, system.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	d, err := module.Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: java.base: %v", p.Dir, err)
	}
	return system.ModuleRelease(d.Version), nil
}

// Platform implements part of system.Provider.
func (p *Provider) Platform(ctx context.Context, release system.Release) (system.Platform, error) {
	if !vfs.IsDir(ctx, p.Dir) {
		return nil, fmt.Errorf("%s: not a directory", p.Dir)
	}
	rs, err := p.Releases(ctx)
	if err != nil {
		return nil, err
	} else if !system.Supports(rs, release) {
		return nil, system.NotSupported(p.Name(), release)
	}
	return platform{p.Dir}, nil
}

type platform struct{ dir string }

func (p platform) Modules(ctx context.Context) ([]string, error) {
	infos, err := vfs.Glob(ctx, filepath.Join(p.dir, "*", module.InfoClass))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = filepath.Base(filepath.Dir(info))
	}
	sort.Strings(names)
	return names, nil
}

func (p platform) ModuleInfo(ctx context.Context, name string) ([]byte, error) {
	return p.read(ctx, name, module.InfoClass)
}

func (p platform) ClassFile(ctx context.Context, name, internalName string) ([]byte, error) {
	return p.read(ctx, name, internalName+".class")
}

func (p platform) read(ctx context.Context, name, resource string) ([]byte, error) {
	data, err := vfs.ReadFile(ctx, filepath.Join(p.dir, name, filepath.FromSlash(resource)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", name, resource, system.ErrNotFound)
	}
	return data, err
}

func (platform) Close() error { return nil }
