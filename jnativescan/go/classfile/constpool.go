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
	"unicode/utf16"
)

// Constant pool tags.
const (
	TagUTF8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

type constant struct {
	tag  byte
	a, b uint16 // index operands; a holds the reference kind of a MethodHandle
	utf8 string
}

// A ConstantPool holds the decoded constant pool of a class file. Index 0 and
// the second slot of long and double constants are unusable.
type ConstantPool struct {
	entries []constant
}

// Len returns the constant_pool_count of the pool.
func (cp *ConstantPool) Len() int { return len(cp.entries) }

func (cp *ConstantPool) entry(i uint16, tags ...byte) (constant, error) {
	if i == 0 || int(i) >= len(cp.entries) {
		return constant{}, fmt.Errorf("constant pool index %d out of range [1, %d)", i, len(cp.entries))
	}
	e := cp.entries[i]
	for _, t := range tags {
		if e.tag == t {
			return e, nil
		}
	}
	return constant{}, fmt.Errorf("constant pool entry %d has tag %d, want one of %v", i, e.tag, tags)
}

// UTF8 returns the string value of the CONSTANT_Utf8 entry at index i.
func (cp *ConstantPool) UTF8(i uint16) (string, error) {
	e, err := cp.entry(i, TagUTF8)
	if err != nil {
		return "", err
	}
	return e.utf8, nil
}

// ClassName returns the internal name stored in the CONSTANT_Class entry at
// index i. Array classes are returned in descriptor form.
func (cp *ConstantPool) ClassName(i uint16) (string, error) {
	return cp.indirect(i, TagClass)
}

// ModuleName returns the name stored in the CONSTANT_Module entry at index i.
func (cp *ConstantPool) ModuleName(i uint16) (string, error) {
	return cp.indirect(i, TagModule)
}

// PackageName returns the internal package name ("java/lang") stored in the
// CONSTANT_Package entry at index i.
func (cp *ConstantPool) PackageName(i uint16) (string, error) {
	return cp.indirect(i, TagPackage)
}

func (cp *ConstantPool) indirect(i uint16, tag byte) (string, error) {
	e, err := cp.entry(i, tag)
	if err != nil {
		return "", err
	}
	return cp.UTF8(e.a)
}

// NameAndType returns the name and descriptor of the CONSTANT_NameAndType
// entry at index i.
func (cp *ConstantPool) NameAndType(i uint16) (name, desc string, err error) {
	e, err := cp.entry(i, TagNameAndType)
	if err != nil {
		return "", "", err
	}
	if name, err = cp.UTF8(e.a); err != nil {
		return "", "", err
	}
	if desc, err = cp.UTF8(e.b); err != nil {
		return "", "", err
	}
	return name, desc, nil
}

// A MemberRef is a symbolic reference to a method.
type MemberRef struct {
	Owner ClassDesc
	Name  string
	Type  MethodTypeDesc
}

// MethodRef decodes the CONSTANT_Methodref or CONSTANT_InterfaceMethodref
// entry at index i. The method descriptor is validated.
func (cp *ConstantPool) MethodRef(i uint16) (MemberRef, error) {
	e, err := cp.entry(i, TagMethodref, TagInterfaceMethodref)
	if err != nil {
		return MemberRef{}, err
	}
	owner, err := cp.ClassName(e.a)
	if err != nil {
		return MemberRef{}, err
	}
	name, desc, err := cp.NameAndType(e.b)
	if err != nil {
		return MemberRef{}, err
	}
	mt, err := ParseMethodType(desc)
	if err != nil {
		return MemberRef{}, err
	}
	return MemberRef{Owner: OfInternalName(owner), Name: name, Type: mt}, nil
}

func (r *reader) constantPool() *ConstantPool {
	n := r.u2()
	if r.err != nil {
		return nil
	}
	if n == 0 {
		r.fail("empty constant pool")
		return nil
	}
	cp := &ConstantPool{entries: make([]constant, n)}
	for i := 1; i < int(n); i++ {
		tag := r.u1()
		e := constant{tag: tag}
		switch tag {
		case TagUTF8:
			length := r.u2()
			raw := r.bytes(int(length))
			if r.err != nil {
				return nil
			}
			s, err := decodeModifiedUTF8(raw)
			if err != nil {
				r.fail(fmt.Sprintf("constant %d: %v", i, err))
				return nil
			}
			e.utf8 = s
		case TagInteger, TagFloat:
			r.skip(4)
		case TagLong, TagDouble:
			r.skip(8)
			cp.entries[i] = e
			i++ // occupies two slots
			continue
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			e.a = r.u2()
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
			e.a, e.b = r.u2(), r.u2()
		case TagMethodHandle:
			e.a, e.b = uint16(r.u1()), r.u2()
		default:
			r.fail(fmt.Sprintf("constant %d: unknown tag %d", i, tag))
		}
		if r.err != nil {
			return nil
		}
		cp.entries[i] = e
	}
	return cp
}

// decodeModifiedUTF8 decodes the "modified UTF-8" used by class files: NUL is
// encoded in two bytes and supplementary characters as surrogate pairs.
func decodeModifiedUTF8(b []byte) (string, error) {
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), nil
	}

	var sb strings.Builder
	var pending rune = -1 // unpaired high surrogate
	flush := func() {
		if pending >= 0 {
			sb.WriteRune(pending)
			pending = -1
		}
	}
	for i := 0; i < len(b); {
		c := b[i]
		var r rune
		switch {
		case c != 0 && c < 0x80:
			r = rune(c)
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", fmt.Errorf("malformed modified UTF-8 at byte %d", i)
			}
			r = rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", fmt.Errorf("malformed modified UTF-8 at byte %d", i)
			}
			r = rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			i += 3
		default:
			return "", fmt.Errorf("malformed modified UTF-8 at byte %d", i)
		}

		switch {
		case r >= 0xD800 && r < 0xDC00:
			flush()
			pending = r
		case r >= 0xDC00 && r < 0xE000 && pending >= 0:
			sb.WriteRune(utf16.DecodeRune(pending, r))
			pending = -1
		default:
			flush()
			sb.WriteRune(r)
		}
	}
	flush()
	return sb.String(), nil
}
