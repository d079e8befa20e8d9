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

package source

import (
	"context"
	"path/filepath"
	"strings"

	"jnativescan.io/jnativescan/go/module"
	"jnativescan.io/jnativescan/go/platform/jar"
	"jnativescan.io/jnativescan/go/platform/vfs"
	"jnativescan.io/jnativescan/go/scan/fatal"
	"jnativescan.io/jnativescan/go/util/log"

	"bitbucket.org/creachadair/stringset"
)

// DiscoverClassPath returns the sources of a class path. Each entry must be a
// jar file or a directory. Jars are followed through the Class-Path
// attribute of their manifest, whose entries are relative to the directory
// of the referencing jar; referenced files that do not exist are skipped.
// Each jar or directory is included once, at its first occurrence.
func DiscoverClassPath(ctx context.Context, paths []string) ([]Source, error) {
	d := &discovery{ctx: ctx, visited: stringset.New()}
	for _, path := range paths {
		fi, err := vfs.Stat(ctx, path)
		switch {
		case err == nil && fi.IsDir():
			d.addDir(path)
		case err == nil && fi.Mode().IsRegular() && strings.HasSuffix(path, ".jar"):
			if err := d.addJar(path); err != nil {
				return nil, err
			}
		default:
			return nil, fatal.Errorf("Path does not appear to be a jar file, or directory containing classes: %s", path)
		}
	}
	return d.sources, nil
}

type discovery struct {
	ctx     context.Context
	visited stringset.Set
	sources []Source
}

func (d *discovery) visit(path string) bool {
	clean := filepath.Clean(path)
	if d.visited.Contains(clean) {
		return false
	}
	d.visited.Add(clean)
	return true
}

func (d *discovery) addDir(path string) {
	if d.visit(path) {
		d.sources = append(d.sources, &ClassPathDirectory{Dir: path})
	}
}

func (d *discovery) addJar(path string) error {
	if !d.visit(path) {
		return nil
	}
	j, err := jar.Open(d.ctx, path)
	if err != nil {
		return fatal.Wrap(err, "Error while reading jar file: %s", path)
	}
	refs := j.ClassPath()
	if err := j.Close(); err != nil {
		return fatal.Wrap(err, "Error while reading jar file: %s", path)
	}
	d.sources = append(d.sources, &ClassPathJar{File: path})

	dir := filepath.Dir(path)
	for _, ref := range refs {
		target := filepath.FromSlash(ref)
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		fi, err := vfs.Stat(d.ctx, target)
		switch {
		case err != nil:
			log.Infof("%s: skipping Class-Path entry %s: %v", path, ref, err)
		case fi.IsDir():
			d.addDir(target)
		case fi.Mode().IsRegular():
			if err := d.addJar(target); err != nil {
				return err
			}
		}
	}
	return nil
}

// ModuleSources returns the sources of resolved modules, in name order.
func ModuleSources(c *module.Configuration) []Source {
	var out []Source
	for _, ref := range c.Modules() {
		out = append(out, &Module{Ref: ref})
	}
	return out
}
