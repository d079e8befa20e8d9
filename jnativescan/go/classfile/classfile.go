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

// Package classfile implements a reader for the JVM class file format.
//
// The reader decodes the parts of a class file needed to find native method
// declarations and method invocations: the constant pool, the class and
// method headers, method bytecode, runtime-visible method annotations and the
// Module attribute of module-info classes. Bytecode is decoded lazily by
// Code.Instructions so that a malformed method body can be reported without
// failing the whole class.
//
// Usage:
//
//	cf, err := classfile.Parse(data)
//	...
//	for _, m := range cf.Methods {
//	   if m.IsNative() {
//	      ...
//	   }
//	   err := m.Code.Instructions(func(in classfile.Instruction) error {
//	      if in.Method != nil {
//	         ...
//	      }
//	      return nil
//	   })
//	}
package classfile // import "jnativescan.io/jnativescan/go/classfile"

import (
	"encoding/binary"
	"fmt"
)

// Magic is the first four bytes of every class file.
const Magic = 0xCAFEBABE

// Access flags, as used by classes and methods.
const (
	AccPublic       = 0x0001
	AccPrivate      = 0x0002
	AccProtected    = 0x0004
	AccStatic       = 0x0008
	AccFinal        = 0x0010
	AccSynchronized = 0x0020
	AccBridge       = 0x0040
	AccVarargs      = 0x0080
	AccNative       = 0x0100
	AccInterface    = 0x0200
	AccAbstract     = 0x0400
	AccStrict       = 0x0800
	AccSynthetic    = 0x1000
	AccAnnotation   = 0x2000
	AccEnum         = 0x4000
	AccModule       = 0x8000
)

// Attribute names understood by the reader.
const (
	AttrCode                      = "Code"
	AttrRuntimeVisibleAnnotations = "RuntimeVisibleAnnotations"
	AttrModule                    = "Module"
	AttrModulePackages            = "ModulePackages"
)

// A FormatError reports a malformed class file.
type FormatError struct {
	Offset int
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("classfile: %s (offset %d)", e.Msg, e.Offset)
}

// ClassFile is a parsed class file.
type ClassFile struct {
	MinorVersion, MajorVersion uint16
	AccessFlags                uint16

	ThisClass  ClassDesc
	SuperClass ClassDesc // empty for java.lang.Object and module-info
	Interfaces []ClassDesc
	Methods    []*Method

	// Module is set for module-info classes.
	Module *ModuleAttr
	// ModulePackages lists the internal names of all packages of a module,
	// when the attribute is present.
	ModulePackages []string

	Pool *ConstantPool
}

// IsModule reports whether c is a module-info class.
func (c *ClassFile) IsModule() bool { return c.AccessFlags&AccModule != 0 }

// FindMethod returns the method declared by c with exactly the given name and
// descriptor, or nil. Inherited methods are not considered.
func (c *ClassFile) FindMethod(name string, desc MethodTypeDesc) *Method {
	for _, m := range c.Methods {
		if m.Name == name && m.Descriptor == desc {
			return m
		}
	}
	return nil
}

// Method is a method declared in a class file.
type Method struct {
	AccessFlags uint16
	Name        string
	Descriptor  MethodTypeDesc

	// Annotations holds the type descriptors of the method's runtime-visible
	// annotations, in declaration order.
	Annotations []string

	// Code is nil for methods without a Code attribute (native and abstract
	// methods, and methods in ct.sym signature files).
	Code *Code
}

// IsNative reports whether m is declared native.
func (m *Method) IsNative() bool { return m.AccessFlags&AccNative != 0 }

// HasAnnotation reports whether m carries a runtime-visible annotation with
// the given type descriptor.
func (m *Method) HasAnnotation(desc string) bool {
	for _, a := range m.Annotations {
		if a == desc {
			return true
		}
	}
	return false
}

// Parse decodes a class file.
func Parse(data []byte) (*ClassFile, error) {
	r := &reader{data: data}
	if magic := r.u4(); r.err == nil && magic != Magic {
		return nil, &FormatError{Offset: 0, Msg: fmt.Sprintf("bad magic number %#x", magic)}
	}
	cf := &ClassFile{
		MinorVersion: r.u2(),
		MajorVersion: r.u2(),
	}
	cf.Pool = r.constantPool()
	if r.err != nil {
		return nil, r.err
	}
	cp := cf.Pool

	cf.AccessFlags = r.u2()
	this, super := r.u2(), r.u2()
	if r.err != nil {
		return nil, r.err
	}
	name, err := cp.ClassName(this)
	if err != nil {
		return nil, r.wrap(fmt.Errorf("this_class: %v", err))
	}
	cf.ThisClass = OfInternalName(name)
	if super != 0 {
		name, err := cp.ClassName(super)
		if err != nil {
			return nil, r.wrap(fmt.Errorf("super_class: %v", err))
		}
		cf.SuperClass = OfInternalName(name)
	}

	for n := r.u2(); n > 0 && r.err == nil; n-- {
		name, err := cp.ClassName(r.u2())
		if err != nil {
			return nil, r.wrap(fmt.Errorf("interfaces: %v", err))
		}
		cf.Interfaces = append(cf.Interfaces, OfInternalName(name))
	}

	// Fields are not needed; skip them.
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		r.skip(6)
		r.skipAttributes()
	}

	for n := r.u2(); n > 0 && r.err == nil; n-- {
		m, err := r.method(cp)
		if err != nil {
			return nil, err
		}
		cf.Methods = append(cf.Methods, m)
	}
	if r.err != nil {
		return nil, r.err
	}

	if err := r.classAttributes(cf); err != nil {
		return nil, err
	}
	return cf, nil
}

func (r *reader) method(cp *ConstantPool) (*Method, error) {
	flags, nameIdx, descIdx := r.u2(), r.u2(), r.u2()
	if r.err != nil {
		return nil, r.err
	}
	name, err := cp.UTF8(nameIdx)
	if err != nil {
		return nil, r.wrap(fmt.Errorf("method name: %v", err))
	}
	desc, err := cp.UTF8(descIdx)
	if err != nil {
		return nil, r.wrap(fmt.Errorf("method %s descriptor: %v", name, err))
	}
	m := &Method{AccessFlags: flags, Name: name, Descriptor: MethodTypeDesc(desc)}

	for n := r.u2(); n > 0 && r.err == nil; n-- {
		attr, body := r.attribute(cp)
		if r.err != nil {
			break
		}
		switch attr {
		case AttrCode:
			code, err := parseCode(body, cp)
			if err != nil {
				return nil, r.wrap(fmt.Errorf("method %s%s: %v", name, desc, err))
			}
			m.Code = code
		case AttrRuntimeVisibleAnnotations:
			anns, err := parseAnnotations(body, cp)
			if err != nil {
				return nil, r.wrap(fmt.Errorf("method %s%s annotations: %v", name, desc, err))
			}
			m.Annotations = anns
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func (r *reader) classAttributes(cf *ClassFile) error {
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		attr, body := r.attribute(cf.Pool)
		if r.err != nil {
			break
		}
		switch attr {
		case AttrModule:
			mod, err := parseModule(body, cf.Pool)
			if err != nil {
				return r.wrap(fmt.Errorf("Module attribute: %v", err))
			}
			cf.Module = mod
		case AttrModulePackages:
			pkgs, err := parseModulePackages(body, cf.Pool)
			if err != nil {
				return r.wrap(fmt.Errorf("ModulePackages attribute: %v", err))
			}
			cf.ModulePackages = pkgs
		}
	}
	return r.err
}

// parseAnnotations decodes a RuntimeVisibleAnnotations attribute, returning
// the annotation type descriptors.
func parseAnnotations(body []byte, cp *ConstantPool) ([]string, error) {
	r := &reader{data: body}
	var types []string
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		t, err := r.annotation(cp)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, r.err
}

func (r *reader) annotation(cp *ConstantPool) (string, error) {
	typ, err := cp.UTF8(r.u2())
	if r.err != nil {
		return "", r.err
	} else if err != nil {
		return "", err
	}
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		r.skip(2) // element_name_index
		if err := r.elementValue(cp); err != nil {
			return "", err
		}
	}
	return typ, r.err
}

func (r *reader) elementValue(cp *ConstantPool) error {
	switch tag := r.u1(); tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		r.skip(2)
	case 'e':
		r.skip(4)
	case '@':
		_, err := r.annotation(cp)
		return err
	case '[':
		for n := r.u2(); n > 0 && r.err == nil; n-- {
			if err := r.elementValue(cp); err != nil {
				return err
			}
		}
	default:
		if r.err == nil {
			r.fail(fmt.Sprintf("unknown element_value tag %q", tag))
		}
	}
	return r.err
}

// reader is a cursor over big-endian class file data. Once a read fails, all
// subsequent reads return zero values and r.err holds the first error.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) fail(msg string) {
	if r.err == nil {
		r.err = &FormatError{Offset: r.pos, Msg: msg}
	}
}

func (r *reader) wrap(err error) error {
	return &FormatError{Offset: r.pos, Msg: err.Error()}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || len(r.data)-r.pos < n {
		r.fail(fmt.Sprintf("truncated: need %d bytes, have %d", n, len(r.data)-r.pos))
		return false
	}
	return true
}

func (r *reader) u1() byte {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v
}

func (r *reader) skip(n int) { r.bytes(n) }

// attribute reads one attribute_info structure, returning its name and body.
func (r *reader) attribute(cp *ConstantPool) (string, []byte) {
	nameIdx := r.u2()
	length := r.u4()
	if r.err != nil {
		return "", nil
	}
	if uint64(length) > uint64(len(r.data)-r.pos) {
		r.fail(fmt.Sprintf("attribute length %d exceeds remaining data", length))
		return "", nil
	}
	name, err := cp.UTF8(nameIdx)
	if err != nil {
		r.fail(fmt.Sprintf("attribute name: %v", err))
		return "", nil
	}
	return name, r.bytes(int(length))
}

func (r *reader) skipAttributes() {
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		r.skip(2)
		length := r.u4()
		if r.err == nil && uint64(length) > uint64(len(r.data)-r.pos) {
			r.fail(fmt.Sprintf("attribute length %d exceeds remaining data", length))
			return
		}
		r.skip(int(length))
	}
}
