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

// Package classbuild assembles class files, jars and module images for tests.
//
// Only the structures read by the scanner are emitted. The output is
// well-formed enough to parse but is not verifiable bytecode.
package classbuild // import "jnativescan.io/jnativescan/go/classfile/classbuild"

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// Access flags used by tests.
const (
	Public = 0x0001
	Static = 0x0008
	Native = 0x0100
	Module = 0x8000
)

// A Class describes a class file to assemble.
type Class struct {
	Name    string // internal name, e.g. "com/example/Foo"
	Super   string // defaults to "java/lang/Object"
	Flags   uint16 // defaults to Public
	Major   uint16 // defaults to 65 (Java 21)
	Methods []Method
}

// A Method describes a method of a Class.
type Method struct {
	Name        string
	Desc        string
	Flags       uint16
	Annotations []string // runtime-visible annotation type descriptors

	// Code is the method body. A nil Code emits no Code attribute.
	Code []Insn
}

// An Insn is one instruction of a method body.
type Insn struct {
	op    byte
	owner string
	name  string
	desc  string
	iface bool
	raw   []byte
}

// Invokestatic returns an invokestatic instruction calling owner.name desc.
func Invokestatic(owner, name, desc string) Insn {
	return Insn{op: 0xb8, owner: owner, name: name, desc: desc}
}

// Invokevirtual returns an invokevirtual instruction calling owner.name desc.
func Invokevirtual(owner, name, desc string) Insn {
	return Insn{op: 0xb6, owner: owner, name: name, desc: desc}
}

// Invokespecial returns an invokespecial instruction calling owner.name desc.
func Invokespecial(owner, name, desc string) Insn {
	return Insn{op: 0xb7, owner: owner, name: name, desc: desc}
}

// Invokeinterface returns an invokeinterface instruction calling owner.name desc.
func Invokeinterface(owner, name, desc string) Insn {
	return Insn{op: 0xb9, owner: owner, name: name, desc: desc, iface: true}
}

// Return returns a void return instruction.
func Return() Insn { return Raw(0xb1) }

// Raw returns an instruction made of the given bytes, emitted verbatim.
func Raw(b ...byte) Insn { return Insn{raw: b} }

// Bytes assembles c into a class file.
func (c Class) Bytes() []byte {
	p := newPool()
	flags := c.Flags
	if flags == 0 {
		flags = Public
	}
	super := c.Super
	if super == "" && c.Name != "java/lang/Object" {
		super = "java/lang/Object"
	}
	this := p.class(c.Name)
	var superIdx uint16
	if super != "" {
		superIdx = p.class(super)
	}

	var body bytes.Buffer
	u2(&body, flags)
	u2(&body, this)
	u2(&body, superIdx)
	u2(&body, 0) // interfaces
	u2(&body, 0) // fields
	u2(&body, uint16(len(c.Methods)))
	for _, m := range c.Methods {
		writeMethod(&body, p, m)
	}
	u2(&body, 0) // attributes
	return p.finish(c.Major, body.Bytes())
}

func writeMethod(w *bytes.Buffer, p *pool, m Method) {
	flags := m.Flags
	if flags == 0 {
		flags = Public
	}
	u2(w, flags)
	u2(w, p.utf8(m.Name))
	u2(w, p.utf8(m.Desc))

	var attrs [][]byte
	if m.Code != nil {
		var code bytes.Buffer
		for _, in := range m.Code {
			if in.raw != nil {
				code.Write(in.raw)
				continue
			}
			code.WriteByte(in.op)
			u2(&code, p.methodRef(in.owner, in.name, in.desc, in.iface))
			if in.op == 0xb9 {
				code.Write([]byte{1, 0})
			}
		}
		var attr bytes.Buffer
		u2(&attr, 16) // max_stack
		u2(&attr, 16) // max_locals
		u4(&attr, uint32(code.Len()))
		attr.Write(code.Bytes())
		u2(&attr, 0) // exception table
		u2(&attr, 0) // attributes
		attrs = append(attrs, p.attribute("Code", attr.Bytes()))
	}
	if len(m.Annotations) > 0 {
		var attr bytes.Buffer
		u2(&attr, uint16(len(m.Annotations)))
		for _, a := range m.Annotations {
			u2(&attr, p.utf8(a))
			u2(&attr, 0) // no element values
		}
		attrs = append(attrs, p.attribute("RuntimeVisibleAnnotations", attr.Bytes()))
	}
	u2(w, uint16(len(attrs)))
	for _, a := range attrs {
		w.Write(a)
	}
}

// A ModuleInfo describes a module-info class.
type ModuleInfo struct {
	Name     string
	Version  string
	Open     bool
	Requires []Requires
	Exports  []Exports
	Uses     []string // internal names
	Provides []Provides
	Packages []string // ModulePackages, internal names
}

// Requires is a module dependence.
type Requires struct {
	Module     string
	Transitive bool
	Static     bool
}

// Exports is an exported package ("com/example"), qualified if To is set.
type Exports struct {
	Package string
	To      []string
}

// Provides declares service implementations by internal name.
type Provides struct {
	Service string
	With    []string
}

// Bytes assembles m into a module-info class file.
func (m ModuleInfo) Bytes() []byte {
	p := newPool()
	var attr bytes.Buffer
	u2(&attr, p.module(m.Name))
	var flags uint16
	if m.Open {
		flags |= 0x0020
	}
	u2(&attr, flags)
	if m.Version != "" {
		u2(&attr, p.utf8(m.Version))
	} else {
		u2(&attr, 0)
	}

	requires := m.Requires
	if m.Name != "java.base" {
		requires = append([]Requires{{Module: "java.base"}}, requires...)
	}
	u2(&attr, uint16(len(requires)))
	for _, r := range requires {
		var f uint16
		if r.Transitive {
			f |= 0x0020
		}
		if r.Static {
			f |= 0x0040
		}
		if r.Module == "java.base" && m.Name != "java.base" {
			f |= 0x8000 // mandated
		}
		u2(&attr, p.module(r.Module))
		u2(&attr, f)
		u2(&attr, 0)
	}

	u2(&attr, uint16(len(m.Exports)))
	for _, e := range m.Exports {
		u2(&attr, p.pkg(e.Package))
		u2(&attr, 0)
		u2(&attr, uint16(len(e.To)))
		for _, to := range e.To {
			u2(&attr, p.module(to))
		}
	}
	u2(&attr, 0) // opens

	u2(&attr, uint16(len(m.Uses)))
	for _, s := range m.Uses {
		u2(&attr, p.class(s))
	}
	u2(&attr, uint16(len(m.Provides)))
	for _, pr := range m.Provides {
		u2(&attr, p.class(pr.Service))
		u2(&attr, uint16(len(pr.With)))
		for _, w := range pr.With {
			u2(&attr, p.class(w))
		}
	}

	var attrs [][]byte
	attrs = append(attrs, p.attribute("Module", attr.Bytes()))
	if len(m.Packages) > 0 {
		var pk bytes.Buffer
		u2(&pk, uint16(len(m.Packages)))
		for _, name := range m.Packages {
			u2(&pk, p.pkg(name))
		}
		attrs = append(attrs, p.attribute("ModulePackages", pk.Bytes()))
	}

	var body bytes.Buffer
	u2(&body, Module)
	u2(&body, p.class("module-info"))
	u2(&body, 0) // super
	u2(&body, 0) // interfaces
	u2(&body, 0) // fields
	u2(&body, 0) // methods
	u2(&body, uint16(len(attrs)))
	for _, a := range attrs {
		body.Write(a)
	}
	return p.finish(0, body.Bytes())
}

type poolKey struct {
	tag  byte
	a, b uint16
	s    string
}

type pool struct {
	buf   bytes.Buffer
	next  uint16
	index map[poolKey]uint16
}

func newPool() *pool { return &pool{next: 1, index: make(map[poolKey]uint16)} }

func (p *pool) add(k poolKey, encode func(w *bytes.Buffer)) uint16 {
	if i, ok := p.index[k]; ok {
		return i
	}
	i := p.next
	p.next++
	p.buf.WriteByte(k.tag)
	encode(&p.buf)
	p.index[k] = i
	return i
}

func (p *pool) utf8(s string) uint16 {
	return p.add(poolKey{tag: 1, s: s}, func(w *bytes.Buffer) {
		enc := EncodeModifiedUTF8(s)
		u2(w, uint16(len(enc)))
		w.Write(enc)
	})
}

func (p *pool) indirect(tag byte, s string) uint16 {
	n := p.utf8(s)
	return p.add(poolKey{tag: tag, a: n}, func(w *bytes.Buffer) { u2(w, n) })
}

func (p *pool) class(name string) uint16  { return p.indirect(7, name) }
func (p *pool) module(name string) uint16 { return p.indirect(19, name) }
func (p *pool) pkg(name string) uint16    { return p.indirect(20, name) }

func (p *pool) methodRef(owner, name, desc string, iface bool) uint16 {
	c := p.class(owner)
	n, d := p.utf8(name), p.utf8(desc)
	nt := p.add(poolKey{tag: 12, a: n, b: d}, func(w *bytes.Buffer) { u2(w, n); u2(w, d) })
	tag := byte(10)
	if iface {
		tag = 11
	}
	return p.add(poolKey{tag: tag, a: c, b: nt}, func(w *bytes.Buffer) { u2(w, c); u2(w, nt) })
}

func (p *pool) attribute(name string, body []byte) []byte {
	var w bytes.Buffer
	u2(&w, p.utf8(name))
	u4(&w, uint32(len(body)))
	w.Write(body)
	return w.Bytes()
}

func (p *pool) finish(major uint16, body []byte) []byte {
	if major == 0 {
		major = 65
	}
	var out bytes.Buffer
	u4(&out, 0xCAFEBABE)
	u2(&out, 0)
	u2(&out, major)
	u2(&out, p.next)
	out.Write(p.buf.Bytes())
	out.Write(body)
	return out.Bytes()
}

// EncodeModifiedUTF8 encodes s in the class file "modified UTF-8" form.
func EncodeModifiedUTF8(s string) []byte {
	var out []byte
	for _, u := range utf16.Encode([]rune(s)) {
		switch {
		case u != 0 && u < 0x80:
			out = append(out, byte(u))
		case u < 0x800:
			out = append(out, byte(0xC0|u>>6), byte(0x80|u&0x3F))
		default:
			out = append(out, byte(0xE0|u>>12), byte(0x80|(u>>6)&0x3F), byte(0x80|u&0x3F))
		}
	}
	return out
}

func u2(w *bytes.Buffer, v uint16) { binary.Write(w, binary.BigEndian, v) }
func u4(w *bytes.Buffer, v uint32) { binary.Write(w, binary.BigEndian, v) }
