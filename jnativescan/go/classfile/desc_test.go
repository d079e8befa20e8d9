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

package classfile

import "testing"

func TestClassDesc(t *testing.T) {
	tests := []struct {
		desc     ClassDesc
		array    bool
		internal string
		pkg      string
		display  string
		qual     string
	}{
		{"Ljava/lang/Object;", false, "java/lang/Object", "java.lang", "Object", "java.lang.Object"},
		{"LFoo;", false, "Foo", "", "Foo", "Foo"},
		{"Lcom/example/Outer$Inner;", false, "com/example/Outer$Inner", "com.example", "Outer$Inner", "com.example.Outer$Inner"},
		{"[I", true, "[I", "", "int[]", "int[]"},
		{"[[Ljava/lang/String;", true, "[[Ljava/lang/String;", "", "String[][]", "String[][]"},
	}
	for _, test := range tests {
		d := test.desc
		if got := d.IsArray(); got != test.array {
			t.Errorf("%q.IsArray(): got %v, want %v", d, got, test.array)
		}
		if got := d.InternalName(); got != test.internal {
			t.Errorf("%q.InternalName(): got %q, want %q", d, got, test.internal)
		}
		if got := d.PackageName(); got != test.pkg {
			t.Errorf("%q.PackageName(): got %q, want %q", d, got, test.pkg)
		}
		if got := d.DisplayName(); got != test.display {
			t.Errorf("%q.DisplayName(): got %q, want %q", d, got, test.display)
		}
		if got := d.QualName(); got != test.qual {
			t.Errorf("%q.QualName(): got %q, want %q", d, got, test.qual)
		}
	}
}

func TestOfName(t *testing.T) {
	if got, want := OfInternalName("java/lang/Object"), ClassDesc("Ljava/lang/Object;"); got != want {
		t.Errorf("OfInternalName: got %q, want %q", got, want)
	}
	if got, want := OfInternalName("[Ljava/lang/Object;"), ClassDesc("[Ljava/lang/Object;"); got != want {
		t.Errorf("OfInternalName(array): got %q, want %q", got, want)
	}
	if got, want := OfQualName("java.lang.foreign.Linker"), ClassDesc("Ljava/lang/foreign/Linker;"); got != want {
		t.Errorf("OfQualName: got %q, want %q", got, want)
	}
}

func TestMethodTypeDesc(t *testing.T) {
	tests := []struct {
		desc, display string
	}{
		{"()V", "()void"},
		{"(IJ)Z", "(int,long)boolean"},
		{"(Ljava/lang/String;[[B)[Ljava/lang/Object;", "(String,byte[][])Object[]"},
	}
	for _, test := range tests {
		mt, err := ParseMethodType(test.desc)
		if err != nil {
			t.Errorf("ParseMethodType(%q): %v", test.desc, err)
			continue
		}
		if got := mt.DisplayDescriptor(); got != test.display {
			t.Errorf("%q.DisplayDescriptor(): got %q, want %q", test.desc, got, test.display)
		}
	}
	if got, want := MethodTypeDesc("bogus").DisplayDescriptor(), "bogus"; got != want {
		t.Errorf("DisplayDescriptor(invalid): got %q, want %q", got, want)
	}
}

func TestParseMethodTypeErrors(t *testing.T) {
	for _, s := range []string{"", "V", "(", "()", "(V)V", "(I)", "()VV", "(L;)V", "(Ljava.lang.String;)V", "(Ljava/lang/String)V", "()[V", "(I)X"} {
		if mt, err := ParseMethodType(s); err == nil {
			t.Errorf("ParseMethodType(%q): got %q, want error", s, mt)
		}
	}
}
