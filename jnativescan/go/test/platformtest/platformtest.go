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

// Package platformtest writes a small Java platform in each of the layouts
// understood by the platform providers, for use in tests.
//
// The platform has two modules. java.base exports java.lang,
// java.lang.foreign and java.io, and exports jdk.internal.misc only to
// jdk.unsupported. java.sql exports java.sql.
package platformtest // import "jnativescan.io/jnativescan/go/test/platformtest"

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"jnativescan.io/jnativescan/go/classfile/classbuild"
)

// Restricted method markers.
const (
	Restricted      = "Ljdk/internal/javac/Restricted;"
	CtSymRestricted = "Ljdk/internal/javac/Restricted+Annotation;"
)

// Members of the platform. Restricted ones carry the restricted marker.
const (
	LoadLibraryOwner = "java/lang/System"
	LoadLibraryName  = "loadLibrary"
	LoadLibraryDesc  = "(Ljava/lang/String;)V" // restricted

	CurrentTimeName = "currentTimeMillis"
	CurrentTimeDesc = "()J" // native, not restricted

	LinkerOwner        = "java/lang/foreign/Linker"
	DowncallHandleName = "downcallHandle"
	DowncallHandleDesc = "(Ljava/lang/foreign/MemorySegment;Ljava/lang/foreign/FunctionDescriptor;[Ljava/lang/foreign/Linker$Option;)Ljava/lang/invoke/MethodHandle;" // restricted
	NativeLinkerName   = "nativeLinker"
	NativeLinkerDesc   = "()Ljava/lang/foreign/Linker;"

	SegmentOwner    = "java/lang/foreign/MemorySegment"
	ReinterpretName = "reinterpret"
	ReinterpretDesc = "(J)Ljava/lang/foreign/MemorySegment;" // restricted

	ObjectOwner  = "java/lang/Object"
	PrintlnOwner = "java/io/PrintStream"
	PrintlnName  = "println"
	PrintlnDesc  = "(Ljava/lang/String;)V"
	ConnectOwner = "java/sql/DriverManager"
	ConnectName  = "getConnection"
	ConnectDesc  = "(Ljava/lang/String;)Ljava/sql/Connection;"

	// UnsafeOwner is in a package exported only to jdk.unsupported.
	UnsafeOwner = "jdk/internal/misc/Unsafe"
	// MissingOwner is in an exported package but has no class file.
	MissingOwner = "java/lang/Missing"
	// UnknownOwner is in a package of no system module.
	UnknownOwner = "com/unknown/Thing"
)

// Modules returns the platform's modules: module name to resource name
// ("java/lang/Object.class", "module-info.class") to class file. Restricted
// methods are marked with the given annotation descriptor. The version is
// recorded for java.base if non-empty.
func Modules(version, marker string) map[string]map[string][]byte {
	restricted := []string{marker}
	class := func(name string, methods ...classbuild.Method) []byte {
		return classbuild.Class{Name: name, Methods: methods}.Bytes()
	}
	static := uint16(classbuild.Public | classbuild.Static)
	return map[string]map[string][]byte{
		"java.base": {
			"module-info.class": classbuild.ModuleInfo{
				Name:    "java.base",
				Version: version,
				Exports: []classbuild.Exports{
					{Package: "java/lang"},
					{Package: "java/lang/foreign"},
					{Package: "java/io"},
					{Package: "jdk/internal/misc", To: []string{"jdk.unsupported"}},
				},
				Packages: []string{"java/lang", "java/lang/foreign", "java/io", "jdk/internal/misc"},
			}.Bytes(),
			classbuild.EntryName(ObjectOwner): class(ObjectOwner, classbuild.Method{Name: "<init>", Desc: "()V", Flags: classbuild.Public}),
			classbuild.EntryName(LoadLibraryOwner): class(LoadLibraryOwner,
				classbuild.Method{Name: LoadLibraryName, Desc: LoadLibraryDesc, Flags: static, Annotations: restricted},
				classbuild.Method{Name: CurrentTimeName, Desc: CurrentTimeDesc, Flags: static | classbuild.Native},
			),
			classbuild.EntryName(LinkerOwner): class(LinkerOwner,
				classbuild.Method{Name: DowncallHandleName, Desc: DowncallHandleDesc, Flags: classbuild.Public, Annotations: restricted},
				classbuild.Method{Name: NativeLinkerName, Desc: NativeLinkerDesc, Flags: static},
			),
			classbuild.EntryName(SegmentOwner): class(SegmentOwner,
				classbuild.Method{Name: ReinterpretName, Desc: ReinterpretDesc, Flags: classbuild.Public, Annotations: restricted},
			),
			classbuild.EntryName(PrintlnOwner): class(PrintlnOwner, classbuild.Method{Name: PrintlnName, Desc: PrintlnDesc, Flags: classbuild.Public}),
			classbuild.EntryName(UnsafeOwner):  class(UnsafeOwner),
		},
		"java.sql": {
			"module-info.class": classbuild.ModuleInfo{
				Name:    "java.sql",
				Exports: []classbuild.Exports{{Package: "java/sql"}},
			}.Bytes(),
			classbuild.EntryName(ConnectOwner): class(ConnectOwner, classbuild.Method{Name: ConnectName, Desc: ConnectDesc, Flags: static}),
		},
	}
}

// WriteExploded writes the platform as exploded modules under dir.
func WriteExploded(t testing.TB, dir, version string) string {
	t.Helper()
	for name, entries := range Modules(version, Restricted) {
		classbuild.WriteTree(t, filepath.Join(dir, name), entries)
	}
	return dir
}

// WriteJmods writes the platform as .jmod files under dir.
func WriteJmods(t testing.TB, dir, version string) string {
	t.Helper()
	for name, entries := range Modules(version, Restricted) {
		classbuild.WriteJmod(t, filepath.Join(dir, name+".jmod"), entries)
	}
	return dir
}

// WriteCtSym writes the platform as a ct.sym archive at path recording the
// given releases.
func WriteCtSym(t testing.TB, path string, releases ...int) string {
	t.Helper()
	sort.Ints(releases)
	var digits strings.Builder
	for _, r := range releases {
		digits.WriteString(strings.ToUpper(strconv.FormatInt(int64(r), 36)))
	}
	entries := make(map[string][]byte)
	for name, resources := range Modules("", CtSymRestricted) {
		for res, data := range resources {
			sig := strings.TrimSuffix(res, ".class") + ".sig"
			dir := digits.String()
			if res == "module-info.class" {
				dir += "-modules"
			}
			entries[dir+"/"+name+"/"+sig] = data
		}
	}
	classbuild.WriteFile(t, path, classbuild.Zip(t, entries))
	return path
}
