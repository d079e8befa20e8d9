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

// Package vfs defines a generic file system interface used by the scanner
// libraries to read class paths, module paths and platform images.
package vfs // import "jnativescan.io/jnativescan/go/platform/vfs"

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// ErrNotSupported is returned for all unsupported VFS operations.
var ErrNotSupported = errors.New("operation not supported")

// Interface is a virtual file system interface for reading and writing files.
// It wraps the os package functions so that other file storage
// implementations can be used in lieu, for example in tests.
type Interface interface {
	Reader
	Writer
}

// FileReader is the interface of an opened file. Archive readers require
// random access, which some implementations cannot provide; those return
// ErrNotSupported from ReadAt and Seek.
type FileReader interface {
	io.ReadCloser
	io.ReaderAt
	io.Seeker
}

// Reader is a virtual file system interface for reading files.
type Reader interface {
	// Stat returns file status information for path, as os.Stat.
	Stat(ctx context.Context, path string) (os.FileInfo, error)

	// Open opens an existing file for reading, as os.Open.
	Open(ctx context.Context, path string) (FileReader, error)

	// Glob returns all the paths matching the specified glob pattern, as
	// filepath.Glob.
	Glob(ctx context.Context, glob string) ([]string, error)
}

// Walker is implemented by file systems that can walk a directory tree.
type Walker interface {
	// Walk visits every file and directory under root in lexical order, as
	// filepath.Walk.
	Walk(ctx context.Context, root string, walkFn filepath.WalkFunc) error
}

// Writer is a virtual file system interface for writing files.
type Writer interface {
	// Create creates a new file for writing, as os.Create.
	Create(ctx context.Context, path string) (io.WriteCloser, error)
}

// Default is the global default VFS used by the scanner libraries to access
// the file system.
var Default Interface = LocalFS{}

// ReadFile is the equivalent of os.ReadFile using the Default VFS.
func ReadFile(ctx context.Context, filename string) ([]byte, error) {
	f, err := Open(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer f.Close() // ignore errors
	return io.ReadAll(f)
}

// Stat returns file status information for path, using the Default VFS.
func Stat(ctx context.Context, path string) (os.FileInfo, error) { return Default.Stat(ctx, path) }

// Open opens an existing file for reading, using the Default VFS.
func Open(ctx context.Context, path string) (FileReader, error) { return Default.Open(ctx, path) }

// Create creates a new file for writing, using the Default VFS.
func Create(ctx context.Context, path string) (io.WriteCloser, error) {
	return Default.Create(ctx, path)
}

// Glob returns all the paths matching the specified glob pattern, using the
// Default VFS.
func Glob(ctx context.Context, glob string) ([]string, error) { return Default.Glob(ctx, glob) }

// Walk walks the tree rooted at root using the Default VFS, which must
// implement Walker.
func Walk(ctx context.Context, root string, walkFn filepath.WalkFunc) error {
	w, ok := Default.(Walker)
	if !ok {
		return ErrNotSupported
	}
	return w.Walk(ctx, root, walkFn)
}

// IsDir reports whether path names an existing directory in the Default VFS.
func IsDir(ctx context.Context, path string) bool {
	fi, err := Stat(ctx, path)
	return err == nil && fi.IsDir()
}

// IsRegular reports whether path names an existing regular file in the
// Default VFS.
func IsRegular(ctx context.Context, path string) bool {
	fi, err := Stat(ctx, path)
	return err == nil && fi.Mode().IsRegular()
}

// LocalFS implements the VFS interface using the standard Go library.
type LocalFS struct{}

// Stat implements part of the VFS interface.
func (LocalFS) Stat(_ context.Context, path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Open implements part of the VFS interface.
func (LocalFS) Open(_ context.Context, path string) (FileReader, error) {
	return os.Open(path)
}

// Create implements part of the VFS interface.
func (LocalFS) Create(_ context.Context, path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// Glob implements part of the VFS interface.
func (LocalFS) Glob(_ context.Context, glob string) ([]string, error) {
	return filepath.Glob(glob)
}

// Walk implements the Walker interface.
func (LocalFS) Walk(_ context.Context, root string, walkFn filepath.WalkFunc) error {
	return filepath.Walk(root, walkFn)
}

// UnseekableFileReader implements the FileReader interface for a stream that
// does not support random access.
type UnseekableFileReader struct {
	io.ReadCloser
}

// ReadAt implements io.ReaderAt. It is not supported.
func (UnseekableFileReader) ReadAt([]byte, int64) (int, error) { return 0, ErrNotSupported }

// Seek implements io.Seeker. It is not supported.
func (UnseekableFileReader) Seek(int64, int) (int64, error) { return 0, ErrNotSupported }
