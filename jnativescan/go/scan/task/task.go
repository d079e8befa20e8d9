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

// Package task runs a scan of class path and module path inputs against a
// platform and renders the findings.
package task // import "jnativescan.io/jnativescan/go/scan/task"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"jnativescan.io/jnativescan/go/module"
	"jnativescan.io/jnativescan/go/platform/jar"
	"jnativescan.io/jnativescan/go/platform/system"
	"jnativescan.io/jnativescan/go/scan/fatal"
	"jnativescan.io/jnativescan/go/scan/finder"
	"jnativescan.io/jnativescan/go/scan/resolve"
	"jnativescan.io/jnativescan/go/scan/source"
	"jnativescan.io/jnativescan/go/util/log"

	"github.com/hashicorp/go-multierror"
)

// An Action selects what a Task reports.
type Action int

const (
	// DumpAll lists every finding by source, class and method.
	DumpAll Action = iota
	// PrintNativeAccess lists the modules that need native access.
	PrintNativeAccess
)

// Config describes what to scan and how to report it.
type Config struct {
	ClassPath   []string
	ModulePath  []string
	RootModules []string // may include module.AllModulePath

	// Release selects the platform and the multi-release jar entries. The
	// zero Release selects the newest release of the provider.
	Release system.Release

	Action Action
	Format Format
}

// A Task scans the inputs of its Config.
type Task struct {
	Config

	Provider system.Provider
	Out, Err io.Writer // results and diagnostics
}

// Run performs the scan and writes the report. All returned errors are
// fatal errors.
func (t *Task) Run(ctx context.Context) (err error) {
	if len(t.ClassPath) == 0 && len(t.RootModules) == 0 {
		return fatal.New("Nothing to scan. Specify either --class-path or --add-modules")
	}
	pf, err := t.Provider.Platform(ctx, t.Release)
	if errors.Is(err, system.ErrReleaseNotSupported) {
		return fatal.Wrap(err, "Release: %s not supported", t.Release)
	} else if err != nil {
		return fatal.Wrap(err, "Error while opening platform %s", t.Provider.Name())
	}
	defer func() {
		cerr := pf.Close()
		if cerr == nil {
			return
		}
		cerr = fatal.Wrap(cerr, "Error while closing platform %s", t.Provider.Name())
		if err == nil {
			err = cerr
		} else {
			err = multierror.Append(err, cerr)
		}
	}()

	release, err := t.jarRelease(ctx)
	if err != nil {
		return err
	}
	sources, err := source.DiscoverClassPath(ctx, t.ClassPath)
	if err != nil {
		return err
	}
	systemFinder, err := system.Finder(ctx, pf)
	if err != nil {
		return fatal.Wrap(err, "Error while reading system modules")
	}
	if len(t.RootModules) > 0 {
		mods, err := t.resolveModules(ctx, systemFinder, release)
		if err != nil {
			return err
		}
		sources = append(sources, mods...)
	}

	classes, err := resolve.ForSources(ctx, sources, release)
	if err != nil {
		return err
	}
	log.Infof("Scanning %d classes from %d sources", classes.Len(), len(sources))
	sys, err := resolve.ForSystem(ctx, pf, systemFinder)
	if err != nil {
		return fatal.Wrap(err, "Error while reading system modules")
	}

	diags := new(finder.Diagnostics)
	results, err := finder.New(diags, classes, sys).FindAll(ctx)
	if err != nil {
		return err
	}
	if err := t.render(results); err != nil {
		return fatal.Wrap(err, "Error while writing results")
	}
	for _, msg := range diags.Messages() {
		fmt.Fprintln(t.Err, "WARNING: "+msg)
	}
	return nil
}

// jarRelease returns the release whose entries of multi-release jars are
// scanned: the requested one, else the highest the provider offers, else the
// highest version present in each jar.
func (t *Task) jarRelease(ctx context.Context) (int, error) {
	if !t.Release.IsZero() {
		return t.Release.Feature(), nil
	}
	rs, err := t.Provider.Releases(ctx)
	if err != nil {
		return 0, fatal.Wrap(err, "Error while listing releases of %s", t.Provider.Name())
	}
	if len(rs) == 0 {
		return jar.Latest, nil
	}
	return rs[len(rs)-1].Feature(), nil
}

func (t *Task) resolveModules(ctx context.Context, systemFinder module.Finder, release int) ([]source.Source, error) {
	after := module.OfPaths(release, t.ModulePath...)
	roots, err := module.ExpandRoots(ctx, after, t.RootModules)
	if err != nil {
		return nil, fatal.Wrap(err, "Error while reading module path %s", strings.Join(t.ModulePath, ", "))
	}
	conf, err := module.Resolve(ctx, systemFinder, after, roots)
	var nf *module.NotFoundError
	if errors.As(err, &nf) {
		return nil, fatal.New(nf.Error())
	} else if err != nil {
		return nil, fatal.Wrap(err, "Error while resolving modules %s", strings.Join(roots, ", "))
	}
	mods := source.ModuleSources(conf)
	log.Infof("Resolved %d modules from roots %s", len(mods), strings.Join(roots, ", "))
	return mods, nil
}
