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

package module

import (
	"context"
	"fmt"

	"jnativescan.io/jnativescan/go/util/log"

	"bitbucket.org/creachadair/stringset"
)

// AllModulePath is the root module name that stands for every module found
// on the module path.
const AllModulePath = "ALL-MODULE-PATH"

// A NotFoundError reports a module that could not be located.
type NotFoundError struct {
	Module     string
	RequiredBy string // empty for root modules
}

func (e *NotFoundError) Error() string {
	if e.RequiredBy == "" {
		return fmt.Sprintf("Module %s not found", e.Module)
	}
	return fmt.Sprintf("Module %s not found, required by %s", e.Module, e.RequiredBy)
}

// A Configuration is the result of resolving a set of root modules. It holds
// the modules located by the application finder; modules satisfied by the
// system finder are not part of it.
type Configuration struct {
	modules map[string]*Reference
}

// Modules returns the resolved modules sorted by name.
func (c *Configuration) Modules() []*Reference {
	refs := make([]*Reference, 0, len(c.modules))
	for _, r := range c.modules {
		refs = append(refs, r)
	}
	sortReferences(refs)
	return refs
}

// Find returns the resolved module with the given name.
func (c *Configuration) Find(name string) (*Reference, bool) {
	r, ok := c.modules[name]
	return r, ok
}

// Resolve computes the modules of the application finder needed by roots, and
// binds service providers to them.
//
// Each root and each non-static dependence is looked up in system first; a
// module found there is satisfied and not part of the result. Otherwise it
// must be found in after. Resolving any automatic module resolves every
// automatic module of after. Modules of after that provide a service used by
// a resolved or system module are added as well, and resolution continues
// until no new module is found.
func Resolve(ctx context.Context, system, after Finder, roots []string) (*Configuration, error) {
	r := &resolver{
		ctx:       ctx,
		system:    system,
		after:     after,
		config:    &Configuration{modules: make(map[string]*Reference)},
		satisfied: stringset.New(),
	}
	for _, root := range roots {
		if err := r.require(root, ""); err != nil {
			return nil, err
		}
	}
	if err := r.drain(); err != nil {
		return nil, err
	}
	for {
		added, err := r.bind()
		if err != nil {
			return nil, err
		} else if !added {
			break
		}
		if err := r.drain(); err != nil {
			return nil, err
		}
	}
	return r.config, nil
}

// ExpandRoots replaces AllModulePath in roots by the names of every module of
// f.
func ExpandRoots(ctx context.Context, f Finder, roots []string) ([]string, error) {
	out := stringset.New()
	for _, root := range roots {
		if root != AllModulePath {
			out.Add(root)
			continue
		}
		all, err := f.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, ref := range all {
			out.Add(ref.Name())
		}
	}
	return out.Elements(), nil
}

type resolver struct {
	ctx           context.Context
	system, after Finder
	config        *Configuration

	queue           []*Reference
	satisfied       stringset.Set // names satisfied by system
	automaticsAdded bool
	systemUses      stringset.Set
}

// require resolves the named module, queueing its dependences if it is new.
func (r *resolver) require(name, by string) error {
	if r.satisfied.Contains(name) {
		return nil
	}
	if _, ok := r.config.modules[name]; ok {
		return nil
	}
	if _, ok, err := r.system.Find(r.ctx, name); err != nil {
		return err
	} else if ok {
		r.satisfied.Add(name)
		return nil
	}
	ref, ok, err := r.after.Find(r.ctx, name)
	if err != nil {
		return err
	} else if !ok {
		return &NotFoundError{Module: name, RequiredBy: by}
	}
	r.add(ref)
	return nil
}

func (r *resolver) add(ref *Reference) {
	log.Infof("Resolved module %s (%s)", ref.Name(), ref.Location)
	r.config.modules[ref.Name()] = ref
	r.queue = append(r.queue, ref)
}

// drain resolves the dependences of queued modules until the queue is empty.
func (r *resolver) drain() error {
	for len(r.queue) > 0 {
		ref := r.queue[0]
		r.queue = r.queue[1:]
		for _, req := range ref.Descriptor.Requires {
			if req.Static {
				continue
			}
			if err := r.require(req.Name, ref.Name()); err != nil {
				return err
			}
		}
		if ref.Descriptor.Automatic && !r.automaticsAdded {
			r.automaticsAdded = true
			if err := r.addAutomatics(); err != nil {
				return err
			}
		}
	}
	return nil
}

// addAutomatics resolves every automatic module of the application finder.
func (r *resolver) addAutomatics() error {
	all, err := r.after.FindAll(r.ctx)
	if err != nil {
		return err
	}
	for _, ref := range all {
		if !ref.Descriptor.Automatic {
			continue
		}
		if err := r.require(ref.Name(), ""); err != nil {
			return err
		}
	}
	return nil
}

// bind adds the application modules that provide a service used by a system
// or resolved module. It reports whether any module was added.
func (r *resolver) bind() (bool, error) {
	if r.systemUses == nil {
		r.systemUses = stringset.New()
		all, err := r.system.FindAll(r.ctx)
		if err != nil {
			return false, err
		}
		for _, ref := range all {
			r.systemUses.Add(ref.Descriptor.Uses...)
		}
	}
	uses := r.systemUses.Clone()
	for _, ref := range r.config.modules {
		uses.Add(ref.Descriptor.Uses...)
	}

	all, err := r.after.FindAll(r.ctx)
	if err != nil {
		return false, err
	}
	added := false
	for _, ref := range all {
		if _, ok := r.config.modules[ref.Name()]; ok {
			continue
		}
		for _, p := range ref.Descriptor.Provides {
			if !uses.Contains(p.Service) {
				continue
			}
			if err := r.require(ref.Name(), ""); err != nil {
				return false, err
			}
			if _, ok := r.config.modules[ref.Name()]; ok {
				log.Infof("Bound module %s providing %s", ref.Name(), p.Service)
				added = true
			}
			break
		}
	}
	return added, nil
}
