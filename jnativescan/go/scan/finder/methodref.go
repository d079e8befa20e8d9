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
	"strings"

	"jnativescan.io/jnativescan/go/classfile"
)

// A MethodRef identifies a method by its owner, name and descriptor.
type MethodRef struct {
	Owner classfile.ClassDesc
	Name  string
	Type  classfile.MethodTypeDesc
}

// OfMethod returns the reference to m, declared by owner.
func OfMethod(owner classfile.ClassDesc, m *classfile.Method) MethodRef {
	return MethodRef{Owner: owner, Name: m.Name, Type: m.Descriptor}
}

// OfInvoke returns the reference to the target of an invoke instruction.
func OfInvoke(r classfile.MemberRef) MethodRef {
	return MethodRef{Owner: r.Owner, Name: r.Name, Type: r.Type}
}

// Signature returns the name and descriptor of m, as "bar()V".
func (m MethodRef) Signature() string { return m.Name + string(m.Type) }

// String returns m as "java.lang.System::loadLibrary(Ljava/lang/String;)V".
func (m MethodRef) String() string { return m.Owner.QualName() + "::" + m.Signature() }

// Compare orders method references by their string form.
func Compare(a, b MethodRef) int { return strings.Compare(a.String(), b.String()) }
