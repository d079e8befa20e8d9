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

// Package jmods implements a platform description read from the jmods
// directory of a JDK, holding one <module>.jmod file per system module.
//
// The directory describes a single release, recorded as the version of
// java.base. Any release is accepted when java.base has no version.
package jmods // import "jnativescan.io/jnativescan/go/platform/system/jmods"

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jnativescan.io/jnativescan/go/module"
	"jnativescan.io/jnativescan/go/platform/system"
	"jnativescan.io/jnativescan/go/platform/vfs"
	"jnativescan.io/jnativescan/go/platform/vfs/zip"

	"github.com/hashicorp/go-multierror"
)

const (
	ext        = ".jmod"
	classesDir = "classes/"
)

// Provider is a system.Provider for a jmods directory.
type Provider struct{ Dir string }

var _ system.Provider = (*Provider)(nil)

// New returns a Provider for the .jmod files in dir.
func New(dir string) *Provider { return &Provider{Dir: dir} }

// Name implements part of system.Provider.
func (p *Provider) Name() string { return "jmods " + p.Dir }

// Releases implements part of system.Provider.
func (p *Provider) Releases(ctx context.Context) ([]system.Release, error) {
	pf := p.open()
	defer pf.Close()
	data, err := pf.ModuleInfo(ctx, "java.base")
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
	return p.open(), nil
}

func (p *Provider) open() *platform {
	return &platform{dir: p.Dir, files: make(map[string]*zip.File)}
}

// platform opens each .jmod file on first use and keeps it open until Close.
type platform struct {
	dir   string
	files map[string]*zip.File
}

func (p *platform) Modules(ctx context.Context) ([]string, error) {
	paths, err := vfs.Glob(ctx, filepath.Join(p.dir, "*"+ext))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = strings.TrimSuffix(filepath.Base(path), ext)
	}
	sort.Strings(names)
	return names, nil
}

func (p *platform) jmod(ctx context.Context, name string) (*zip.File, error) {
	if f, ok := p.files[name]; ok {
		return f, nil
	}
	f, err := zip.OpenFile(ctx, filepath.Join(p.dir, name+ext))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("module %s: %w", name, system.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("opening %s%s: %v", name, ext, err)
	}
	p.files[name] = f
	return f, nil
}

func (p *platform) read(ctx context.Context, name, resource string) ([]byte, error) {
	f, err := p.jmod(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := f.ReadFile(ctx, classesDir+resource)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", name, resource, system.ErrNotFound)
	}
	return data, err
}

func (p *platform) ModuleInfo(ctx context.Context, name string) ([]byte, error) {
	return p.read(ctx, name, module.InfoClass)
}

func (p *platform) ClassFile(ctx context.Context, name, internalName string) ([]byte, error) {
	return p.read(ctx, name, internalName+".class")
}

func (p *platform) Close() error {
	var errs *multierror.Error
	for name, f := range p.files {
		if err := f.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("closing %s%s: %v", name, ext, err))
		}
	}
	p.files = make(map[string]*zip.File)
	return errs.ErrorOrNil()
}
