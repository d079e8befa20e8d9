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

package finder

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"jnativescan.io/jnativescan/go/classfile"
	"jnativescan.io/jnativescan/go/classfile/classbuild"
	"jnativescan.io/jnativescan/go/platform/system"
	"jnativescan.io/jnativescan/go/platform/system/exploded"
	"jnativescan.io/jnativescan/go/scan/fatal"
	"jnativescan.io/jnativescan/go/scan/resolve"
	"jnativescan.io/jnativescan/go/scan/source"
	"jnativescan.io/jnativescan/go/test/platformtest"
	"jnativescan.io/jnativescan/go/test/testutil"
)

var (
	loadLibrary    = classbuild.Invokestatic(platformtest.LoadLibraryOwner, platformtest.LoadLibraryName, platformtest.LoadLibraryDesc)
	currentTime    = classbuild.Invokestatic(platformtest.LoadLibraryOwner, platformtest.CurrentTimeName, platformtest.CurrentTimeDesc)
	nativeLinker   = classbuild.Invokestatic(platformtest.LinkerOwner, platformtest.NativeLinkerName, platformtest.NativeLinkerDesc)
	downcallHandle = classbuild.Invokeinterface(platformtest.LinkerOwner, platformtest.DowncallHandleName, platformtest.DowncallHandleDesc)
	reinterpret    = classbuild.Invokeinterface(platformtest.SegmentOwner, platformtest.ReinterpretName, platformtest.ReinterpretDesc)
	objectInit     = classbuild.Invokespecial(platformtest.ObjectOwner, "<init>", "()V")
	printLine      = classbuild.Invokevirtual(platformtest.PrintlnOwner, platformtest.PrintlnName, platformtest.PrintlnDesc)
	arrayClone     = classbuild.Invokevirtual("[Ljava/lang/Object;", "clone", "()Ljava/lang/Object;")
)

func method(name string, code ...classbuild.Insn) classbuild.Method {
	return classbuild.Method{Name: name, Desc: "()V", Code: append(code, classbuild.Return())}
}

func class(name string, methods ...classbuild.Method) []byte {
	return classbuild.Class{Name: name, Methods: methods}.Bytes()
}

// platformSystem returns a resolver for the test platform.
func platformSystem(t *testing.T) resolve.Resolver {
	t.Helper()
	ctx := context.Background()
	p, err := exploded.New(platformtest.WriteExploded(t, t.TempDir(), "21")).Platform(ctx, system.Of(21))
	testutil.Fatalf(t, "Platform: %v", err)
	t.Cleanup(func() { p.Close() })
	finder, err := system.Finder(ctx, p)
	testutil.Fatalf(t, "Finder: %v", err)
	r, err := resolve.ForSystem(ctx, p, finder)
	testutil.Fatalf(t, "ForSystem: %v", err)
	return r
}

// mapResolver is a system resolver over fixed classes that counts lookups.
type mapResolver struct {
	classes map[classfile.ClassDesc]*classfile.ClassFile
	lookups map[classfile.ClassDesc]int
}

func newMapResolver(t *testing.T, classes ...[]byte) *mapResolver {
	t.Helper()
	r := &mapResolver{
		classes: make(map[classfile.ClassDesc]*classfile.ClassFile),
		lookups: make(map[classfile.ClassDesc]int),
	}
	for _, data := range classes {
		cf, err := classfile.Parse(data)
		testutil.Fatalf(t, "Parse: %v", err)
		r.classes[cf.ThisClass] = cf
	}
	return r
}

func (r *mapResolver) Lookup(_ context.Context, desc classfile.ClassDesc) (resolve.Info, bool, error) {
	r.lookups[desc]++
	cf, ok := r.classes[desc]
	return resolve.Info{Class: cf}, ok, nil
}

// scan writes each map of classes to its own class directory and scans them.
func scan(t *testing.T, system resolve.Resolver, dirs ...map[string][]byte) (Results, *Diagnostics, error) {
	t.Helper()
	ctx := context.Background()
	root := t.TempDir()
	var srcs []source.Source
	for i, entries := range dirs {
		dir := classbuild.WriteTree(t, filepath.Join(root, fmt.Sprintf("dir%d", i)), entries)
		srcs = append(srcs, &source.ClassPathDirectory{Dir: dir})
	}
	classes, err := resolve.ForSources(ctx, srcs, 21)
	testutil.Fatalf(t, "ForSources: %v", err)
	diags := new(Diagnostics)
	res, err := New(diags, classes, system).FindAll(ctx)
	return res, diags, err
}

// render returns a line per source, class and finding, with the source
// named by its base name.
func render(r Results) []string {
	var out []string
	for _, s := range r {
		out = append(out, fmt.Sprintf("%s (%s)", filepath.Base(s.Source.Path()), s.Source.ModuleName()))
		for _, c := range s.Classes {
			out = append(out, "  "+c.Class.QualName())
			for _, u := range c.Uses {
				switch u := u.(type) {
				case NativeMethodDecl:
					out = append(out, "    native "+u.Decl.Signature())
				case RestrictedMethodRefs:
					var refs []string
					for _, r := range u.Referees {
						refs = append(refs, r.String())
					}
					out = append(out, "    "+u.Referent.Signature()+" -> "+strings.Join(refs, " "))
				}
			}
		}
	}
	return out
}

func TestMethodRef(t *testing.T) {
	ref := MethodRef{
		Owner: classfile.OfInternalName("java/lang/foreign/Linker$Option"),
		Name:  "firstVariadicArg",
		Type:  "(I)Ljava/lang/foreign/Linker$Option;",
	}
	if got, want := ref.String(), "java.lang.foreign.Linker$Option::firstVariadicArg(I)Ljava/lang/foreign/Linker$Option;"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
	if got := OfInvoke(classfile.MemberRef{Owner: ref.Owner, Name: ref.Name, Type: ref.Type}); got != ref {
		t.Errorf("OfInvoke: got %v, want %v", got, ref)
	}
	other := ref
	other.Name = "allocate"
	if Compare(other, ref) >= 0 || Compare(ref, ref) != 0 {
		t.Errorf("Compare: %q is not before %q", other, ref)
	}
}

func TestFindAll(t *testing.T) {
	res, diags, err := scan(t, platformSystem(t),
		map[string][]byte{
			"Foo.class": class("Foo",
				method("bar", loadLibrary, printLine, loadLibrary),
				method("quiet", objectInit, printLine),
			),
			"com/example/Native.class": class("com/example/Native",
				classbuild.Method{Name: "poke", Desc: "(J)V", Flags: classbuild.Public | classbuild.Native},
				method("time", currentTime),
			),
			"com/example/Clean.class": class("com/example/Clean", method("run", printLine, nativeLinker)),
		},
		map[string][]byte{
			"Clean.class": class("Clean", method("run", printLine)),
		},
		map[string][]byte{
			"z/Ffi.class": class("z/Ffi",
				method("call", nativeLinker, reinterpret, downcallHandle, reinterpret),
				method("copy", arrayClone),
			),
			"a/Ffi.class": class("a/Ffi", method("call", downcallHandle)),
		},
	)
	testutil.Fatalf(t, "FindAll: %v", err)
	if diags.Len() != 0 {
		t.Errorf("FindAll: unexpected diagnostics %q", diags.Messages())
	}
	want := []string{
		"dir0 (ALL-UNNAMED)",
		"  Foo",
		"    bar()V -> java.lang.System::loadLibrary(Ljava/lang/String;)V",
		"  com.example.Native",
		"    native poke(J)V",
		"dir2 (ALL-UNNAMED)",
		"  a.Ffi",
		"    call()V -> java.lang.foreign.Linker::" + platformtest.DowncallHandleName + platformtest.DowncallHandleDesc,
		"  z.Ffi",
		"    call()V -> java.lang.foreign.Linker::" + platformtest.DowncallHandleName + platformtest.DowncallHandleDesc +
			" java.lang.foreign.MemorySegment::" + platformtest.ReinterpretName + platformtest.ReinterpretDesc,
	}
	testutil.Errorf(t, "FindAll: %v", testutil.DeepEqual(want, render(res)))
	testutil.Errorf(t, "Modules: %v", testutil.DeepEqual([]string{source.UnnamedModule}, res.Modules()))
}

func TestFindAllEmpty(t *testing.T) {
	res, _, err := scan(t, platformSystem(t), map[string][]byte{"A.class": class("A", method("run", printLine))})
	testutil.Fatalf(t, "FindAll: %v", err)
	if len(res) != 0 || len(res.Modules()) != 0 {
		t.Errorf("FindAll: got %q, want no results", render(res))
	}
}

func TestIsRestricted(t *testing.T) {
	restricted := []string{platformtest.CtSymRestricted}
	sys := newMapResolver(t,
		class("p/Base", classbuild.Method{Name: "danger", Desc: "()V", Annotations: restricted}),
		class("p/Derived"),
		class("p/Other", classbuild.Method{Name: "danger", Desc: "()V", Annotations: []string{"Lp/Marker;"}}),
	)
	danger := func(owner, desc string) classbuild.Insn { return classbuild.Invokevirtual(owner, "danger", desc) }
	res, _, err := scan(t, sys, map[string][]byte{
		"A.class": class("A",
			method("array", arrayClone, arrayClone),
			method("base", danger("p/Base", "()V"), danger("p/Base", "()V")),
			method("inherited", danger("p/Derived", "()V")),
			method("overload", danger("p/Base", "(I)V")),
			method("other", danger("p/Other", "()V")),
			method("unknown", danger("q/Unknown", "()V")),
		),
		"B.class": class("B", method("base", danger("p/Base", "()V"))),
	})
	testutil.Fatalf(t, "FindAll: %v", err)
	want := []string{
		"dir0 (ALL-UNNAMED)",
		"  A",
		"    base()V -> p.Base::danger()V",
		"  B",
		"    base()V -> p.Base::danger()V",
	}
	testutil.Errorf(t, "FindAll: %v", testutil.DeepEqual(want, render(res)))

	wantLookups := map[classfile.ClassDesc]int{
		"Lp/Base;":    2, // danger()V and danger(I)V
		"Lp/Derived;": 1,
		"Lp/Other;":   1,
		"Lq/Unknown;": 1,
	}
	testutil.Errorf(t, "lookups: %v", testutil.DeepEqual(wantLookups, sys.lookups))
}

func TestFindAllMissingSystemClass(t *testing.T) {
	missing := classbuild.Invokestatic(platformtest.MissingOwner, "run", "()V")
	_, _, err := scan(t, platformSystem(t), map[string][]byte{"A.class": class("A", method("run", missing))})
	if !fatal.Is(err) || err.Error() != "System class can not be found: java.lang.Missing" {
		t.Errorf("FindAll: got %v, want fatal error", err)
	}
}

func TestFindAllMalformedMethod(t *testing.T) {
	res, diags, err := scan(t, platformSystem(t), map[string][]byte{
		"A.class": class("A",
			method("broken", loadLibrary, classbuild.Raw(0xff)),
			method("fine", loadLibrary),
		),
		"B.class": class("B", classbuild.Method{
			Name: "broken",
			Desc: "()V",
			Code: []classbuild.Insn{classbuild.Raw(byte(classfile.OpInvokestatic), 0)},
		}),
	})
	testutil.Fatalf(t, "FindAll: %v", err)
	want := []string{
		"dir0 (ALL-UNNAMED)",
		"  A",
		"    fine()V -> java.lang.System::loadLibrary(Ljava/lang/String;)V",
	}
	testutil.Errorf(t, "FindAll: %v", testutil.DeepEqual(want, render(res)))
	wantDiags := []string{
		"Error while processing method: A::broken()V: bytecode offset 3: invalid opcode 0xff",
		"Error while processing method: B::broken()V: bytecode offset 0: truncated instruction (opcode 0xb8)",
	}
	testutil.Errorf(t, "Diagnostics: %v", testutil.DeepEqual(wantDiags, diags.Messages()))
}

func TestDiagnostics(t *testing.T) {
	var d Diagnostics
	d.Addf("one %d", 1)
	d.Addf("two")
	d.Addf("one %d", 1)
	testutil.Errorf(t, "Messages: %v", testutil.DeepEqual([]string{"one 1", "two"}, d.Messages()))
}
