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

// Package archive provides support for reading the contents of the ZIP-based
// archives of the Java platform: .jar and .zip files, .jmod files and the
// ct.sym signature archive.
package archive // import "jnativescan.io/jnativescan/go/util/archive"

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// File defines the input capabilities needed to read an archive file.
type File interface {
	io.Closer
	io.ReaderAt
	io.Seeker
}

// ErrNotArchive is returned by NewReader when passed a file it does not
// recognize as a readable archive.
var ErrNotArchive = errors.New("not a supported archive file")

// JmodMagic is the header preceding the ZIP content of a .jmod file.
const JmodMagic = "JM\x01\x00"

// IsArchive reports whether path names a supported archive type.
func IsArchive(path string) bool { return parsePath(path) != "" }

// NewReader returns a ZIP reader over the contents of file. The path is used
// to determine what type of archive is referred to by file. If the type is not
// known, it returns ErrNotArchive.
//
// The supported archive formats are:
//
//	.zip  -- ZIP archive (also .ZIP, .jar, .JAR and ct.sym)
//	.jmod -- JMOD archive: a 4-byte header followed by a ZIP archive
func NewReader(file File, path string) (*zip.Reader, error) {
	format := parsePath(path)
	if format == "" {
		return nil, ErrNotArchive
	}
	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("archive: finding file size: %v", err)
	}
	var offset int64
	if format == ".jmod" {
		hdr := make([]byte, len(JmodMagic))
		if _, err := file.ReadAt(hdr, 0); err != nil {
			return nil, fmt.Errorf("archive: reading jmod header: %v", err)
		} else if string(hdr) != JmodMagic {
			return nil, fmt.Errorf("archive: invalid jmod header %q", hdr)
		}
		offset = int64(len(JmodMagic))
	}
	archive, err := zip.NewReader(io.NewSectionReader(file, offset, size-offset), size-offset)
	if err != nil {
		return nil, fmt.Errorf("archive: opening ZIP reader: %v", err)
	}
	return archive, nil
}

// parsePath determines which archive format is represented by path, returning
// ".zip" or ".jmod", or "" if the format could not be determined.
func parsePath(path string) string {
	switch ext := filepath.Ext(path); ext {
	case ".zip", ".ZIP", ".jar", ".JAR":
		return ".zip"
	case ".jmod":
		return ext
	case ".sym":
		if strings.EqualFold(filepath.Base(path), "ct.sym") {
			return ".zip"
		}
	}
	return "" // format unknown
}
