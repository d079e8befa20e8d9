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

package task

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"jnativescan.io/jnativescan/go/scan/finder"

	"sigs.k8s.io/yaml"
)

// A Format is a rendering of the findings.
type Format string

// Supported formats. The zero Format is Text.
const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, JSON, YAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// Report is the structured form of the findings of DumpAll.
type Report struct {
	Sources []SourceReport `json:"sources"`
}

// AccessReport is the structured form of the findings of PrintNativeAccess.
type AccessReport struct {
	Modules []string `json:"modules"`
}

// SourceReport lists the findings of one class path entry or module.
type SourceReport struct {
	Path    string        `json:"path"`
	Module  string        `json:"module"`
	Classes []ClassReport `json:"classes"`
}

// ClassReport lists the findings of one class.
type ClassReport struct {
	Name    string         `json:"name"`
	Methods []MethodReport `json:"methods"`
}

// MethodReport is one finding. Native methods have no Restricted targets.
type MethodReport struct {
	Method     string   `json:"method"`
	Native     bool     `json:"native,omitempty"`
	Restricted []string `json:"restricted,omitempty"`
}

// NewReport returns the structured report of results for action: an
// *AccessReport for PrintNativeAccess, otherwise a *Report. Lists are empty,
// never absent, when nothing was found.
func NewReport(action Action, results finder.Results) any {
	if action == PrintNativeAccess {
		mods := results.Modules()
		if mods == nil {
			mods = []string{}
		}
		return &AccessReport{Modules: mods}
	}
	r := &Report{Sources: []SourceReport{}}
	for _, s := range results {
		sr := SourceReport{Path: s.Source.Path(), Module: s.Source.ModuleName()}
		for _, c := range s.Classes {
			cr := ClassReport{Name: c.Class.QualName()}
			for _, u := range c.Uses {
				mr := MethodReport{Method: u.Method().Signature()}
				switch u := u.(type) {
				case finder.NativeMethodDecl:
					mr.Native = true
				case finder.RestrictedMethodRefs:
					for _, ref := range u.Referees {
						mr.Restricted = append(mr.Restricted, ref.String())
					}
				}
				cr.Methods = append(cr.Methods, mr)
			}
			sr.Classes = append(sr.Classes, cr)
		}
		r.Sources = append(r.Sources, sr)
	}
	return r
}

func (t *Task) render(results finder.Results) error {
	switch t.Format {
	case JSON:
		data, err := json.MarshalIndent(NewReport(t.Action, results), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(t.Out, "%s\n", data)
		return err
	case YAML:
		data, err := yaml.Marshal(NewReport(t.Action, results))
		if err != nil {
			return err
		}
		_, err = t.Out.Write(data)
		return err
	case Text, "":
		if t.Action == PrintNativeAccess {
			_, err := fmt.Fprintln(t.Out, strings.Join(results.Modules(), ","))
			return err
		}
		return dump(t.Out, results)
	}
	return fmt.Errorf("unknown output format %q", t.Format)
}

// dump writes every finding of results, nested by source, class and method.
func dump(w io.Writer, results finder.Results) error {
	var b strings.Builder
	if len(results) == 0 {
		b.WriteString("  <no restricted methods>\n")
	}
	for _, s := range results {
		fmt.Fprintf(&b, "%s (%s):\n", s.Source.Path(), s.Source.ModuleName())
		for _, c := range s.Classes {
			fmt.Fprintf(&b, "  %s:\n", c.Class.QualName())
			for _, u := range c.Uses {
				switch u := u.(type) {
				case finder.NativeMethodDecl:
					fmt.Fprintf(&b, "    %s is a native method declaration\n", u.Decl.Signature())
				case finder.RestrictedMethodRefs:
					fmt.Fprintf(&b, "    %s references restricted methods:\n", u.Referent.Signature())
					for _, ref := range u.Referees {
						fmt.Fprintf(&b, "      %s\n", ref)
					}
				}
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
