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

// Package zip reads the entries of a zip archive by name, as an isolated,
// read-only file system.
package zip // import "jnativescan.io/jnativescan/go/platform/vfs/zip"

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"

	"jnativescan.io/jnativescan/go/platform/vfs"
	"jnativescan.io/jnativescan/go/util/archive"
)

// FS is a read-only view of a zip archive. Paths are archive entry names,
// using forward slashes.
type FS struct {
	Archive *zip.Reader

	index map[string]*zip.File // file entries by name
}

// NewFS indexes the file entries of archive. When several entries share a
// name, the first one in directory order is used.
func NewFS(archive *zip.Reader) FS {
	index := make(map[string]*zip.File, len(archive.File))
	for _, f := range archive.File {
		if _, ok := index[f.Name]; !ok && !f.FileInfo().IsDir() {
			index[f.Name] = f
		}
	}
	return FS{Archive: archive, index: index}
}

// Open returns a reader for the named entry, owned by the underlying archive.
func (z FS) Open(_ context.Context, name string) (vfs.FileReader, error) {
	f, ok := z.index[name]
	if !ok {
		return nil, fmt.Errorf("path %q does not exist: %w", name, os.ErrNotExist)
	}
	fo, err := f.Open()
	if err != nil {
		return nil, err
	}
	return vfs.UnseekableFileReader{ReadCloser: fo}, nil
}

// ReadFile returns the contents of the named entry.
func (z FS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	f, err := z.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Names returns the names of all file entries in directory order.
func (z FS) Names() []string {
	var names []string
	for _, f := range z.Archive.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names
}

// File is a zip file system backed by an opened archive file, which must be
// closed when no longer needed.
type File struct {
	FS
	Path string

	file vfs.FileReader
}

// OpenFile opens the archive at path through the default VFS. The archive
// type is determined from the path as described by archive.NewReader.
func OpenFile(ctx context.Context, path string) (*File, error) {
	f, err := vfs.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	rc, err := archive.NewReader(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{FS: NewFS(rc), Path: path, file: f}, nil
}

// Close releases the underlying archive file.
func (f *File) Close() error { return f.file.Close() }
