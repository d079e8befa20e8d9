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
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"jnativescan.io/jnativescan/go/classfile/classbuild"
	"jnativescan.io/jnativescan/go/platform/jar"
	"jnativescan.io/jnativescan/go/test/testutil"
)

func TestRead(t *testing.T) {
	data := classbuild.ModuleInfo{
		Name:    "com.example.app",
		Version: "1.2",
		Open:    true,
		Requires: []classbuild.Requires{
			{Module: "java.sql", Transitive: true},
			{Module: "com.example.opt", Static: true},
		},
		Exports: []classbuild.Exports{
			{Package: "com/example/api"},
			{Package: "com/example/impl", To: []string{"com.example.friend"}},
		},
		Uses:     []string{"com/example/spi/Plugin"},
		Provides: []classbuild.Provides{{Service: "java/sql/Driver", With: []string{"com/example/db/Driver"}}},
		Packages: []string{"com/example/internal"},
	}.Bytes()

	d, err := Read(data)
	testutil.Fatalf(t, "Read: %v", err)
	want := &Descriptor{
		Name:    "com.example.app",
		Version: "1.2",
		Open:    true,
		Requires: []Requires{
			{Name: "java.base"},
			{Name: "java.sql", Transitive: true},
			{Name: "com.example.opt", Static: true},
		},
		Exports: []Exports{
			{Package: "com.example.api"},
			{Package: "com.example.impl", To: []string{"com.example.friend"}},
		},
		Uses:     []string{"com.example.spi.Plugin"},
		Provides: []Provides{{Service: "java.sql.Driver", With: []string{"com.example.db.Driver"}}},
		Packages: []string{"com.example.api", "com.example.db", "com.example.impl", "com.example.internal"},
	}
	testutil.Errorf(t, "Read: %v", testutil.DeepEqual(want, d))

	for _, s := range []string{
		"open module com.example.app@1.2 {",
		"  requires transitive java.sql;",
		"  requires static com.example.opt;",
		"  exports com.example.impl to com.example.friend;",
		"  provides java.sql.Driver with com.example.db.Driver;",
	} {
		if !strings.Contains(d.String(), s) {
			t.Errorf("String(): missing %q in\n%s", s, d)
		}
	}
}

func TestReadNotModule(t *testing.T) {
	if d, err := Read(classbuild.Class{Name: "com/example/Foo"}.Bytes()); err == nil {
		t.Errorf("Read(class): got %v, want error", d)
	}
}

func TestAutomaticName(t *testing.T) {
	tests := []struct {
		path     string
		manifest jar.Manifest
		name     string
		version  string
	}{
		{path: "/lib/foo-1.0.jar", name: "foo", version: "1.0"},
		{path: "my-lib-2.3.4.jar", name: "my.lib", version: "2.3.4"},
		{path: "foo-bar-1.jar", name: "foo.bar", version: "1"},
		{path: "commons_io.jar", name: "commons.io"},
		{path: "a--b.jar", name: "a.b"},
		{path: "-foo-.jar", name: "foo"},
		{path: "guava-33.0-jre.jar", name: "guava", version: "33.0-jre"},
		{path: "core-util-3.jar", manifest: jar.Manifest{"automatic-module-name": " org.example.core "},
			name: "org.example.core", version: "3"},
	}
	for _, test := range tests {
		name, version, err := AutomaticName(test.path, test.manifest)
		if err != nil {
			t.Errorf("AutomaticName(%q): unexpected error: %v", test.path, err)
		} else if name != test.name || version != test.version {
			t.Errorf("AutomaticName(%q): got (%q, %q), want (%q, %q)", test.path, name, version, test.name, test.version)
		}
	}
}

func TestAutomaticNameErrors(t *testing.T) {
	tests := []struct {
		path     string
		manifest jar.Manifest
	}{
		{path: "123.jar"},
		{path: "---.jar"},
		{path: "class.jar"},
		{path: "lib.int.jar"},
		{path: "ok.jar", manifest: jar.Manifest{"automatic-module-name": "org.9lives"}},
	}
	for _, test := range tests {
		if name, _, err := AutomaticName(test.path, test.manifest); err == nil {
			t.Errorf("AutomaticName(%q): got %q, want error", test.path, name)
		}
	}
}

// writeModulePath lays out a module path directory holding a modular jar, an
// exploded module, a provider jar and an automatic jar along with entries
// that are not modules.
func writeModulePath(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "mods")
	classbuild.WriteJar(t, filepath.Join(dir, "m.a.jar"), nil, map[string][]byte{
		InfoClass: classbuild.ModuleInfo{
			Name:     "m.a",
			Requires: []classbuild.Requires{{Module: "m.b"}},
			Exports:  []classbuild.Exports{{Package: "com/a"}},
			Uses:     []string{"com/a/spi/Plugin"},
		}.Bytes(),
		"com/a/A.class":          classbuild.Class{Name: "com/a/A"}.Bytes(),
		"com/a/internal/I.class": classbuild.Class{Name: "com/a/internal/I"}.Bytes(),
	})
	classbuild.WriteTree(t, filepath.Join(dir, "m.b"), map[string][]byte{
		InfoClass:       classbuild.ModuleInfo{Name: "m.b"}.Bytes(),
		"com/b/B.class": classbuild.Class{Name: "com/b/B"}.Bytes(),
	})
	classbuild.WriteJar(t, filepath.Join(dir, "m.plugin.jar"), nil, map[string][]byte{
		InfoClass: classbuild.ModuleInfo{
			Name:     "m.plugin",
			Requires: []classbuild.Requires{{Module: "m.a"}},
			Provides: []classbuild.Provides{{Service: "com/a/spi/Plugin", With: []string{"com/plugin/Impl"}}},
		}.Bytes(),
		"com/plugin/Impl.class": classbuild.Class{Name: "com/plugin/Impl"}.Bytes(),
	})
	classbuild.WriteJar(t, filepath.Join(dir, "auto-lib-1.2.jar"), map[string]string{}, map[string][]byte{
		"META-INF/services/com.a.spi.Plugin": []byte("com.auto.Impl # comment\n\norg.other.Missing\n"),
		"com/auto/Impl.class":                classbuild.Class{Name: "com/auto/Impl"}.Bytes(),
	})
	classbuild.WriteFile(t, filepath.Join(dir, "README.txt"), []byte("not a module"))
	classbuild.WriteFile(t, filepath.Join(dir, "empty", "notes.txt"), []byte("not a module"))
	return dir
}

func names(refs []*Reference) []string {
	var out []string
	for _, r := range refs {
		out = append(out, r.Name())
	}
	return out
}

func TestOfPaths(t *testing.T) {
	ctx := context.Background()
	dir := writeModulePath(t)
	f := OfPaths(21, filepath.Join(t.TempDir(), "missing"), dir)

	all, err := f.FindAll(ctx)
	testutil.Fatalf(t, "FindAll: %v", err)
	testutil.Errorf(t, "FindAll: %v", testutil.DeepEqual([]string{"auto.lib", "m.a", "m.b", "m.plugin"}, names(all)))

	a, ok, err := f.Find(ctx, "m.a")
	if err != nil || !ok {
		t.Fatalf("Find(m.a): %v %v", ok, err)
	}
	if a.Location != filepath.Join(dir, "m.a.jar") {
		t.Errorf("m.a location: got %q", a.Location)
	}
	testutil.Errorf(t, "m.a packages: %v", testutil.DeepEqual([]string{"com.a", "com.a.internal"}, a.Descriptor.Packages))

	auto, _, err := f.Find(ctx, "auto.lib")
	testutil.Fatalf(t, "Find(auto.lib): %v", err)
	want := &Descriptor{
		Name:      "auto.lib",
		Version:   "1.2",
		Automatic: true,
		Provides:  []Provides{{Service: "com.a.spi.Plugin", With: []string{"com.auto.Impl"}}},
		Packages:  []string{"com.auto"},
	}
	testutil.Errorf(t, "auto.lib: %v", testutil.DeepEqual(want, auto.Descriptor))

	if _, ok, err := f.Find(ctx, "empty"); ok || err != nil {
		t.Errorf("Find(empty): got %v, %v; want not found", ok, err)
	}
}

func TestReferenceOpen(t *testing.T) {
	ctx := context.Background()
	f := OfPaths(21, writeModulePath(t))
	for _, test := range []struct {
		module string
		want   []string
	}{
		{"m.a", []string{"com/a/A.class", "com/a/internal/I.class", InfoClass}},
		{"m.b", []string{"com/b/B.class", InfoClass}},
	} {
		ref, _, err := f.Find(ctx, test.module)
		testutil.Fatalf(t, "Find: %v", err)
		r, err := ref.Open(ctx)
		testutil.Fatalf(t, "Open: %v", err)
		list, err := r.List(ctx)
		testutil.Fatalf(t, "List: %v", err)
		testutil.Errorf(t, "List: %v (module %s)", testutil.DeepEqual(test.want, list), test.module)
		data, err := r.Read(ctx, InfoClass)
		testutil.Errorf(t, "Read: %v", err)
		if d, err := Read(data); err != nil || d.Name != test.module {
			t.Errorf("Read(%s): got %v, %v", InfoClass, d, err)
		}
		if _, err := r.Read(ctx, "com/Missing.class"); err == nil {
			t.Errorf("Read(com/Missing.class): got nil error")
		}
		testutil.Errorf(t, "Close: %v", r.Close())
	}

	if _, err := NewReference(&Descriptor{Name: "java.base"}, "", nil).Open(ctx); err == nil {
		t.Error("Open without contents: got nil error")
	}
}

func TestOfPathsMultiRelease(t *testing.T) {
	ctx := context.Background()
	path := classbuild.WriteJar(t, filepath.Join(t.TempDir(), "mr.jar"), map[string]string{"Multi-Release": "true"},
		map[string][]byte{
			"META-INF/versions/11/" + InfoClass: classbuild.ModuleInfo{Name: "mr.eleven"}.Bytes(),
			"com/mr/A.class":                    classbuild.Class{Name: "com/mr/A"}.Bytes(),
		})
	if ref, ok, err := OfPaths(17, path).Find(ctx, "mr.eleven"); err != nil || !ok || ref.Descriptor.Automatic {
		t.Errorf("release 17: got %v, %v, %v; want modular mr.eleven", ref, ok, err)
	}
	if ref, ok, err := OfPaths(8, path).Find(ctx, "mr"); err != nil || !ok || !ref.Descriptor.Automatic {
		t.Errorf("release 8: got %v, %v, %v; want automatic mr", ref, ok, err)
	}
}

func TestOfPathsFirstWins(t *testing.T) {
	ctx := context.Background()
	first := classbuild.WriteJar(t, filepath.Join(t.TempDir(), "dup-1.jar"), nil, nil)
	second := classbuild.WriteJar(t, filepath.Join(t.TempDir(), "dup-2.jar"), nil, nil)
	ref, ok, err := OfPaths(21, first, second).Find(ctx, "dup")
	if err != nil || !ok {
		t.Fatalf("Find(dup): %v %v", ok, err)
	}
	if ref.Location != first {
		t.Errorf("Find(dup): got %q, want %q", ref.Location, first)
	}
}

func TestOfPathsErrors(t *testing.T) {
	ctx := context.Background()

	dup := t.TempDir()
	classbuild.WriteJar(t, filepath.Join(dup, "a-1.0.jar"), nil, nil)
	classbuild.WriteJar(t, filepath.Join(dup, "a-2.0.jar"), nil, nil)

	jmod := t.TempDir()
	classbuild.WriteJmod(t, filepath.Join(jmod, "m.jmod"), nil)

	bad := t.TempDir()
	classbuild.WriteFile(t, filepath.Join(bad, "bad.jar"), []byte("not a zip"))

	tests := []struct {
		dir  string
		want string
	}{
		{dup, "two versions of module a found in " + dup + " (a-1.0.jar and a-2.0.jar)"},
		{jmod, "JMOD format not supported"},
		{bad, "error reading module " + filepath.Join(bad, "bad.jar")},
	}
	for _, test := range tests {
		_, err := OfPaths(21, test.dir).FindAll(ctx)
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("FindAll(%s): got %v, want error containing %q", test.dir, err, test.want)
		}
	}
}

func ref(d *Descriptor) *Reference { return NewReference(d, "", nil) }

func TestResolve(t *testing.T) {
	ctx := context.Background()
	system := OfReferences(
		ref(&Descriptor{Name: "java.base", Uses: []string{"java.sql.Driver"}}),
		ref(&Descriptor{Name: "java.sql"}),
	)
	after := OfReferences(
		ref(&Descriptor{Name: "app", Requires: []Requires{
			{Name: "java.base"}, {Name: "lib"}, {Name: "java.sql"}, {Name: "opt", Static: true},
		}}),
		ref(&Descriptor{Name: "lib", Requires: []Requires{{Name: "java.base"}}}),
		ref(&Descriptor{Name: "java.sql", Requires: []Requires{{Name: "broken.dep"}}}),
		ref(&Descriptor{Name: "driver", Uses: []string{"x.Ext"},
			Provides: []Provides{{Service: "java.sql.Driver", With: []string{"d.Impl"}}}}),
		ref(&Descriptor{Name: "ext", Provides: []Provides{{Service: "x.Ext", With: []string{"e.Impl"}}}}),
		ref(&Descriptor{Name: "auto1", Automatic: true}),
		ref(&Descriptor{Name: "auto2", Automatic: true}),
		ref(&Descriptor{Name: "needs.auto", Requires: []Requires{{Name: "auto1"}}}),
		ref(&Descriptor{Name: "broken", Requires: []Requires{{Name: "missing"}}}),
		ref(&Descriptor{Name: "unused"}),
	)

	tests := []struct {
		roots []string
		want  []string
	}{
		{[]string{"app"}, []string{"app", "driver", "ext", "lib"}},
		{[]string{"needs.auto"}, []string{"auto1", "auto2", "driver", "ext", "needs.auto"}},
		{[]string{"java.base"}, []string{"driver", "ext"}},
		{[]string{"lib", "lib"}, []string{"driver", "ext", "lib"}},
	}
	for _, test := range tests {
		c, err := Resolve(ctx, system, after, test.roots)
		if err != nil {
			t.Errorf("Resolve(%q): unexpected error: %v", test.roots, err)
			continue
		}
		testutil.Errorf(t, "Resolve: %v (roots %q)", testutil.DeepEqual(test.want, names(c.Modules())), test.roots)
	}

	c, err := Resolve(ctx, system, after, []string{"lib"})
	testutil.Fatalf(t, "Resolve: %v", err)
	if _, ok := c.Find("lib"); !ok {
		t.Error("Find(lib): not found")
	}
	if _, ok := c.Find("java.base"); ok {
		t.Error("Find(java.base): system module is part of the configuration")
	}
}

func TestResolveNotFound(t *testing.T) {
	ctx := context.Background()
	system := OfReferences(ref(&Descriptor{Name: "java.base"}))
	after := OfReferences(
		ref(&Descriptor{Name: "broken", Requires: []Requires{{Name: "missing"}}}),
		ref(&Descriptor{Name: "top", Requires: []Requires{{Name: "broken"}}}),
	)
	tests := []struct {
		roots []string
		want  string
	}{
		{[]string{"broken"}, "Module missing not found, required by broken"},
		{[]string{"top"}, "Module missing not found, required by broken"},
		{[]string{"nope"}, "Module nope not found"},
	}
	for _, test := range tests {
		_, err := Resolve(ctx, system, after, test.roots)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("Resolve(%q): got %v, want NotFoundError", test.roots, err)
		} else if err.Error() != test.want {
			t.Errorf("Resolve(%q): got %q, want %q", test.roots, err, test.want)
		}
	}
}

func TestResolveModulePath(t *testing.T) {
	ctx := context.Background()
	system := OfReferences(ref(&Descriptor{Name: "java.base"}))
	after := OfPaths(21, writeModulePath(t))

	c, err := Resolve(ctx, system, after, []string{"m.a"})
	testutil.Fatalf(t, "Resolve: %v", err)
	testutil.Errorf(t, "Resolve: %v", testutil.DeepEqual([]string{"auto.lib", "m.a", "m.b", "m.plugin"}, names(c.Modules())))

	c, err = Resolve(ctx, system, after, []string{"m.b"})
	testutil.Fatalf(t, "Resolve: %v", err)
	testutil.Errorf(t, "Resolve: %v", testutil.DeepEqual([]string{"m.b"}, names(c.Modules())))
}

func TestExpandRoots(t *testing.T) {
	ctx := context.Background()
	f := OfReferences(ref(&Descriptor{Name: "b"}), ref(&Descriptor{Name: "a"}))
	tests := []struct {
		roots []string
		want  []string
	}{
		{[]string{"x"}, []string{"x"}},
		{[]string{AllModulePath}, []string{"a", "b"}},
		{[]string{"z", AllModulePath, "a"}, []string{"a", "b", "z"}},
	}
	for _, test := range tests {
		got, err := ExpandRoots(ctx, f, test.roots)
		if err != nil {
			t.Errorf("ExpandRoots(%q): unexpected error: %v", test.roots, err)
			continue
		}
		testutil.Errorf(t, "ExpandRoots: %v (roots %q)", testutil.DeepEqual(test.want, got), test.roots)
	}
}
