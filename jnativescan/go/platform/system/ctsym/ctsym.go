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

// Package ctsym implements a platform description read from the lib/ct.sym
// archive of a JDK, which records the API of every supported past release.
//
// Each top-level directory of the archive is named by the releases it
// applies to, one base-36 digit per release ("9ABC" covers 9, 10, 11 and
// 12). Directories ending in "-modules" hold module declarations as
// <dir>/<module>/module-info.sig; the others hold classes as
// <dir>/<module>/<internal name>.sig. Signature files are class files.
package ctsym // import "jnativescan.io/jnativescan/go/platform/system/ctsym"

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"jnativescan.io/jnativescan/go/platform/system"
	zipfs "jnativescan.io/jnativescan/go/platform/vfs/zip"
	"jnativescan.io/jnativescan/go/util/log"

	"bitbucket.org/creachadair/stringset"
)

const (
	// FileName is the name of the archive within the lib directory of a JDK.
	FileName = "ct.sym"

	modulesSuffix = "-modules"
	sigExt        = ".sig"
	infoSig       = "module-info" + sigExt

	// minRelease is the first release with modules.
	minRelease = 9
)

// Provider is a system.Provider for a ct.sym archive.
type Provider struct{ Path string }

var _ system.Provider = (*Provider)(nil)

// New returns a Provider for the ct.sym archive at path.
func New(path string) *Provider { return &Provider{Path: path} }

// Name implements part of system.Provider.
func (p *Provider) Name() string { return "ct.sym " + p.Path }

// Releases implements part of system.Provider.
func (p *Provider) Releases(ctx context.Context) ([]system.Release, error) {
	f, err := zipfs.OpenFile(ctx, p.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := make(map[int]bool)
	for _, dir := range topLevel(f.Archive) {
		for _, r := range strings.TrimSuffix(dir, modulesSuffix) {
			if v, ok := releaseOf(r); ok {
				seen[v] = true
			}
		}
	}
	var out []system.Release
	for v := range seen {
		out = append(out, system.Of(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Feature() < out[j].Feature() })
	return out, nil
}

// Platform implements part of system.Provider. The zero Release selects the
// latest release recorded in the archive.
func (p *Provider) Platform(ctx context.Context, release system.Release) (system.Platform, error) {
	rs, err := p.Releases(ctx)
	if err != nil {
		return nil, err
	}
	if release.IsZero() && len(rs) > 0 {
		release = rs[len(rs)-1]
	}
	if release.Feature() < minRelease || len(rs) == 0 || !system.Supports(rs, release) {
		return nil, system.NotSupported(p.Name(), release)
	}
	digit := Digit(release.Feature())

	f, err := zipfs.OpenFile(ctx, p.Path)
	if err != nil {
		return nil, err
	}
	pf := &platform{file: f}
	for _, dir := range topLevel(f.Archive) {
		if prefix, ok := strings.CutSuffix(dir, modulesSuffix); ok {
			if strings.Contains(prefix, digit) {
				pf.moduleDirs = append(pf.moduleDirs, dir)
			}
		} else if strings.Contains(dir, digit) {
			pf.classDirs = append(pf.classDirs, dir)
		}
	}
	log.Infof("%s: release %s uses %v and %v", p.Path, release, pf.moduleDirs, pf.classDirs)
	return pf, nil
}

// Digit returns the base-36 digit naming a release in ct.sym directories.
func Digit(feature int) string { return strings.ToUpper(strconv.FormatInt(int64(feature), 36)) }

func releaseOf(r rune) (int, bool) {
	v, err := strconv.ParseInt(string(r), 36, 32)
	if err != nil || v < minRelease {
		return 0, false
	}
	return int(v), true
}

// topLevel returns the sorted names of the top-level directories of a.
func topLevel(a *zip.Reader) []string {
	dirs := stringset.New()
	for _, e := range a.File {
		if dir, _, ok := strings.Cut(e.Name, "/"); ok && dir != "" {
			dirs.Add(dir)
		}
	}
	return dirs.Elements()
}

type platform struct {
	file                  *zipfs.File
	moduleDirs, classDirs []string
}

func (p *platform) Modules(context.Context) ([]string, error) {
	names := stringset.New()
	entries := p.file.Names()
	for _, dir := range p.moduleDirs {
		prefix := dir + "/"
		for _, name := range entries {
			rest, ok := strings.CutPrefix(name, prefix)
			if !ok {
				continue
			}
			if mod, file, ok := strings.Cut(rest, "/"); ok && file == infoSig {
				names.Add(mod)
			}
		}
	}
	return names.Elements(), nil
}

func (p *platform) find(ctx context.Context, dirs []string, name, resource string) ([]byte, error) {
	for _, dir := range dirs {
		data, err := p.file.ReadFile(ctx, dir+"/"+name+"/"+resource)
		if !errors.Is(err, os.ErrNotExist) {
			return data, err
		}
	}
	return nil, fmt.Errorf("%s/%s: %w", name, resource, system.ErrNotFound)
}

func (p *platform) ModuleInfo(ctx context.Context, name string) ([]byte, error) {
	return p.find(ctx, p.moduleDirs, name, infoSig)
}

func (p *platform) ClassFile(ctx context.Context, name, internalName string) ([]byte, error) {
	return p.find(ctx, p.classDirs, name, internalName+sigExt)
}

func (p *platform) Close() error { return p.file.Close() }
