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

import (
	"fmt"
	"strings"
)

// A ClassDesc is a nominal descriptor for a class, interface or array type,
// in JVM field descriptor form: "Ljava/lang/Object;", "[I" or
// "[Ljava/lang/String;". The zero value is not a valid descriptor.
type ClassDesc string

// OfInternalName returns the descriptor for a class given its internal name
// ("java/lang/Object"). Array types, which the constant pool stores in
// descriptor form, are returned unchanged.
func OfInternalName(name string) ClassDesc {
	if strings.HasPrefix(name, "[") {
		return ClassDesc(name)
	}
	return ClassDesc("L" + name + ";")
}

// OfQualName returns the descriptor for a class given its dotted binary name
// ("java.lang.Object").
func OfQualName(name string) ClassDesc {
	return OfInternalName(strings.ReplaceAll(name, ".", "/"))
}

// IsArray reports whether d describes an array type.
func (d ClassDesc) IsArray() bool { return strings.HasPrefix(string(d), "[") }

// IsClassOrInterface reports whether d describes a class or interface type.
func (d ClassDesc) IsClassOrInterface() bool {
	return len(d) > 2 && d[0] == 'L' && d[len(d)-1] == ';'
}

// InternalName returns the internal name of a class ("java/lang/Object"). For
// array types the descriptor itself is returned, as in the constant pool.
func (d ClassDesc) InternalName() string {
	if d.IsClassOrInterface() {
		return string(d[1 : len(d)-1])
	}
	return string(d)
}

// PackageName returns the dotted package name of a class, or "" for classes
// in the unnamed package and for non-class types.
func (d ClassDesc) PackageName() string {
	if !d.IsClassOrInterface() {
		return ""
	}
	name := d.InternalName()
	i := strings.LastIndexByte(name, '/')
	if i < 0 {
		return ""
	}
	return strings.ReplaceAll(name[:i], "/", ".")
}

// DisplayName returns the simple name of the type: the class name without
// its package, a primitive keyword, or a component name followed by "[]" for
// each array dimension.
func (d ClassDesc) DisplayName() string {
	s := string(d)
	dims := 0
	for dims < len(s) && s[dims] == '[' {
		dims++
	}
	component := s[dims:]
	var name string
	if kw, ok := primitives[component]; ok {
		name = kw
	} else {
		name = ClassDesc(component).InternalName()
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
	}
	return name + strings.Repeat("[]", dims)
}

// QualName returns the package-qualified display name of d, for example
// "java.lang.Object" or "int[]".
func (d ClassDesc) QualName() string {
	if pkg := d.PackageName(); pkg != "" {
		return pkg + "." + d.DisplayName()
	}
	return d.DisplayName()
}

var primitives = map[string]string{
	"B": "byte",
	"C": "char",
	"D": "double",
	"F": "float",
	"I": "int",
	"J": "long",
	"S": "short",
	"Z": "boolean",
	"V": "void",
}

// A MethodTypeDesc is a method descriptor, such as "(ILjava/lang/String;)V".
type MethodTypeDesc string

// ParseMethodType validates s as a method descriptor.
func ParseMethodType(s string) (MethodTypeDesc, error) {
	if _, _, err := splitMethodType(s); err != nil {
		return "", err
	}
	return MethodTypeDesc(s), nil
}

// DisplayDescriptor renders m with simple type names, as "(int,String)void".
func (m MethodTypeDesc) DisplayDescriptor() string {
	params, ret, err := splitMethodType(string(m))
	if err != nil {
		return string(m)
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.DisplayName()
	}
	return "(" + strings.Join(names, ",") + ")" + ret.DisplayName()
}

func splitMethodType(s string) (params []ClassDesc, ret ClassDesc, err error) {
	if !strings.HasPrefix(s, "(") {
		return nil, "", fmt.Errorf("invalid method descriptor %q", s)
	}
	i := 1
	for i < len(s) && s[i] != ')' {
		n := fieldTypeLen(s[i:], false)
		if n == 0 {
			return nil, "", fmt.Errorf("invalid method descriptor %q", s)
		}
		params = append(params, ClassDesc(s[i:i+n]))
		i += n
	}
	if i >= len(s) {
		return nil, "", fmt.Errorf("invalid method descriptor %q", s)
	}
	i++ // ')'
	if n := fieldTypeLen(s[i:], true); n == 0 || i+n != len(s) {
		return nil, "", fmt.Errorf("invalid method descriptor %q", s)
	}
	return params, ClassDesc(s[i:]), nil
}

// fieldTypeLen returns the length of the field type at the start of s, or 0
// if s does not start with a valid field type.
func fieldTypeLen(s string, allowVoid bool) int {
	dims := 0
	for dims < len(s) && s[dims] == '[' {
		dims++
	}
	if dims > 255 || dims == len(s) {
		return 0
	}
	switch s[dims] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return dims + 1
	case 'V':
		if allowVoid && dims == 0 {
			return 1
		}
		return 0
	case 'L':
		end := strings.IndexByte(s[dims:], ';')
		if end <= 1 {
			return 0
		}
		if strings.ContainsAny(s[dims+1:dims+end], ".[") {
			return 0
		}
		return dims + end + 1
	}
	return 0
}
