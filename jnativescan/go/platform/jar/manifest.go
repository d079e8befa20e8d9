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

package jar

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Main attributes of interest.
const (
	AttrClassPath           = "Class-Path"
	AttrMultiRelease        = "Multi-Release"
	AttrAutomaticModuleName = "Automatic-Module-Name"
)

// Manifest holds the main section attributes of a JAR manifest. Attribute
// names are case-insensitive.
type Manifest map[string]string

// Get returns the value of the named attribute, or "".
func (m Manifest) Get(name string) string { return m[strings.ToLower(name)] }

// ParseManifest decodes the main section of a JAR manifest. Continuation
// lines, which start with a single space, are joined to the preceding line.
// Per-entry sections are ignored.
func ParseManifest(data []byte) (Manifest, error) {
	m := make(Manifest)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Split(scanManifestLines)

	var key, value string
	flush := func() {
		if key != "" {
			m[strings.ToLower(key)] = value
		}
		key, value = "", ""
	}
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if line == "" {
			break // end of the main section
		}
		if strings.HasPrefix(line, " ") {
			if key == "" {
				return nil, fmt.Errorf("manifest line %d: continuation without header", n)
			}
			value += line[1:]
			continue
		}
		flush()
		i := strings.Index(line, ": ")
		if i <= 0 {
			return nil, fmt.Errorf("manifest line %d: invalid header %q", n, line)
		}
		key, value = line[:i], line[i+2:]
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// scanManifestLines is a bufio.SplitFunc accepting CR LF, LF or CR line
// terminators.
func scanManifestLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil // need more data to decide on CR LF
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
