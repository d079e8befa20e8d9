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

package system

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"jnativescan.io/jnativescan/go/classfile/classbuild"
	"jnativescan.io/jnativescan/go/test/testutil"
)

func TestParseRelease(t *testing.T) {
	tests := []struct {
		in      string
		feature int
		want    string
	}{
		{"21", 21, "21"},
		{" 17.0.2 ", 17, "17.0.2"},
		{"22-ea", 22, "22-ea"},
		{"21+35", 21, "21+35"},
		{"21.0.1+12-LTS", 21, "21.0.1+12-LTS"},
		{"9", 9, "9"},
	}
	for _, test := range tests {
		r, err := ParseRelease(test.in)
		if err != nil {
			t.Errorf("ParseRelease(%q): unexpected error: %v", test.in, err)
			continue
		}
		if r.Feature() != test.feature || r.String() != test.want {
			t.Errorf("ParseRelease(%q): got %d %q, want %d %q", test.in, r.Feature(), r, test.feature, test.want)
		}
	}

	for _, bad := range []string{"", "0", "x", "21.", "1.08", "-ea", "21 22"} {
		if r, err := ParseRelease(bad); err == nil {
			t.Errorf("ParseRelease(%q): got %v, want error", bad, r)
		}
	}

	var zero Release
	if !zero.IsZero() || zero.Feature() != 0 || zero.String() != "<default>" {
		t.Errorf("zero Release: got IsZero=%v Feature=%d String=%q", zero.IsZero(), zero.Feature(), zero)
	}
}

func TestSupports(t *testing.T) {
	offered := []Release{Of(17), Of(21)}
	tests := []struct {
		offered []Release
		release Release
		want    bool
	}{
		{offered, Of(21), true},
		{offered, Release{Version: []int{17, 0, 2}}, true},
		{offered, Of(11), false},
		{offered, Release{}, true},
		{nil, Of(11), true},
	}
	for _, test := range tests {
		if got := Supports(test.offered, test.release); got != test.want {
			t.Errorf("Supports(%v, %v): got %v, want %v", test.offered, test.release, got, test.want)
		}
	}
	if got := ModuleRelease("21.0.1"); len(got) != 1 || got[0].Feature() != 21 {
		t.Errorf("ModuleRelease(21.0.1): got %v", got)
	}
	if got := ModuleRelease("internal"); got != nil {
		t.Errorf("ModuleRelease(internal): got %v, want nil", got)
	}
}

// fakePlatform serves module-info classes from memory.
type fakePlatform struct {
	name    string
	modules map[string][]byte
	closed  bool
}

func (p *fakePlatform) Modules(context.Context) ([]string, error) {
	var names []string
	for name := range p.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (p *fakePlatform) ModuleInfo(_ context.Context, name string) ([]byte, error) {
	if data, ok := p.modules[name]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

func (p *fakePlatform) ClassFile(_ context.Context, name, internalName string) ([]byte, error) {
	return nil, fmt.Errorf("%s/%s: %w", name, internalName, ErrNotFound)
}

func (p *fakePlatform) Close() error { p.closed = true; return nil }

type fakeProvider struct {
	name     string
	releases []Release
	err      error
}

func (p fakeProvider) Name() string { return p.name }

func (p fakeProvider) Releases(context.Context) ([]Release, error) { return p.releases, p.err }

func (p fakeProvider) Platform(_ context.Context, r Release) (Platform, error) {
	if p.err != nil {
		return nil, p.err
	}
	if !Supports(p.releases, r) {
		return nil, NotSupported(p.name, r)
	}
	return &fakePlatform{name: fmt.Sprintf("%s@%s", p.name, r)}, nil
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	chain := Chain{
		fakeProvider{name: "current", releases: []Release{Of(23)}},
		fakeProvider{name: "history", releases: []Release{Of(9), Of(17), Of(21), Of(23)}},
	}
	if got := chain.Name(); got != "current, history" {
		t.Errorf("Name: got %q", got)
	}
	rs, err := chain.Releases(ctx)
	testutil.Fatalf(t, "Releases: %v", err)
	testutil.Errorf(t, "Releases: %v", testutil.DeepEqual([]Release{Of(9), Of(17), Of(21), Of(23)}, rs))

	tests := []struct {
		release Release
		want    string
	}{
		{Release{}, "current@23"},
		{Of(23), "current@23"},
		{Of(17), "history@17"},
	}
	for _, test := range tests {
		p, err := chain.Platform(ctx, test.release)
		if err != nil {
			t.Errorf("Platform(%v): unexpected error: %v", test.release, err)
			continue
		}
		if got := p.(*fakePlatform).name; got != test.want {
			t.Errorf("Platform(%v): got %q, want %q", test.release, got, test.want)
		}
	}

	if p, err := chain.Platform(ctx, Of(8)); !errors.Is(err, ErrReleaseNotSupported) {
		t.Errorf("Platform(8): got %v, %v; want ErrReleaseNotSupported", p, err)
	}

	broken := errors.New("unreadable")
	if _, err := (Chain{fakeProvider{name: "bad", err: broken}}).Platform(ctx, Of(21)); !errors.Is(err, broken) {
		t.Errorf("Platform with failing provider: got %v, want %v", err, broken)
	}
}

func TestFinder(t *testing.T) {
	ctx := context.Background()
	p := &fakePlatform{modules: map[string][]byte{
		"java.base": classbuild.ModuleInfo{
			Name:    "java.base",
			Exports: []classbuild.Exports{{Package: "java/lang"}},
			Uses:    []string{"java/lang/System$LoggerFinder"},
		}.Bytes(),
		"java.sql": classbuild.ModuleInfo{Name: "java.sql", Exports: []classbuild.Exports{{Package: "java/sql"}}}.Bytes(),
	}}
	f, err := Finder(ctx, p)
	testutil.Fatalf(t, "Finder: %v", err)

	all, err := f.FindAll(ctx)
	testutil.Fatalf(t, "FindAll: %v", err)
	var names []string
	for _, r := range all {
		names = append(names, r.Name())
		if r.Location != "" {
			t.Errorf("%s: got location %q, want none", r.Name(), r.Location)
		}
	}
	testutil.Errorf(t, "FindAll: %v", testutil.DeepEqual([]string{"java.base", "java.sql"}, names))

	base, ok, err := f.Find(ctx, "java.base")
	if err != nil || !ok {
		t.Fatalf("Find(java.base): %v %v", ok, err)
	}
	testutil.Errorf(t, "java.base uses: %v", testutil.DeepEqual([]string{"java.lang.System$LoggerFinder"}, base.Descriptor.Uses))

	p.modules["broken"] = []byte("not a class")
	if _, err := Finder(ctx, p); err == nil {
		t.Error("Finder with a malformed module-info: got nil error")
	}
}
