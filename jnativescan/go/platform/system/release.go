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

package system

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// A Release is a Java runtime version such as "21", "17.0.2" or "22-ea+27".
// The zero Release means "unspecified".
type Release struct {
	// Version holds the numeric components; Version[0] is the feature
	// release.
	Version []int
	Pre     string
	Build   string
}

var releaseRE = regexp.MustCompile(`^([1-9][0-9]*(?:\.(?:0|[1-9][0-9]*))*)(?:-([A-Za-z0-9]+))?(?:\+([0-9A-Za-z.-]*))?$`)

// ParseRelease parses a version string of the form
// feature[.interim[.update...]][-pre][+build].
func ParseRelease(s string) (Release, error) {
	m := releaseRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Release{}, fmt.Errorf("invalid release %q", s)
	}
	var r Release
	for _, part := range strings.Split(m[1], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Release{}, fmt.Errorf("invalid release %q: %v", s, err)
		}
		r.Version = append(r.Version, n)
	}
	r.Pre, r.Build = m[2], m[3]
	return r, nil
}

// Of returns the Release for a feature number.
func Of(feature int) Release { return Release{Version: []int{feature}} }

// IsZero reports whether r is the zero Release.
func (r Release) IsZero() bool { return len(r.Version) == 0 }

// Feature returns the feature release number, or 0 for the zero Release.
func (r Release) Feature() int {
	if r.IsZero() {
		return 0
	}
	return r.Version[0]
}

func (r Release) String() string {
	if r.IsZero() {
		return "<default>"
	}
	parts := make([]string, len(r.Version))
	for i, v := range r.Version {
		parts[i] = strconv.Itoa(v)
	}
	s := strings.Join(parts, ".")
	if r.Pre != "" {
		s += "-" + r.Pre
	}
	if r.Build != "" {
		s += "+" + r.Build
	}
	return s
}
