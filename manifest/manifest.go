// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package manifest declaratively describes the method shapes an
// hpjsrpc.Engine exposes: name, parameter arity, and parameter types.
// It is the bridge between a YAML description an operator edits by
// hand and the hpjsrpc.MethodRecord.Params shape the dispatcher
// checks requests against, plus a JSON introspection view for
// clients that want to discover what an engine supports.
package manifest

import (
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"

	"github.com/hpjsrpc/hpjsrpc"
)

// ParamSpec is one declared parameter in a method's manifest entry.
type ParamSpec struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// MethodSpec is one method's manifest entry.
type MethodSpec struct {
	Name         string      `yaml:"name" json:"name"`
	Notification bool        `yaml:"notification,omitempty" json:"notification,omitempty"`
	Params       []ParamSpec `yaml:"params" json:"params"`
}

// Manifest is a loaded, parsed collection of method specs.
type Manifest struct {
	Methods []MethodSpec `yaml:"methods" json:"methods"`
}

// Load reads and parses a YAML manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hpjsrpc/manifest: reading %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("hpjsrpc/manifest: parsing %s: %w", path, err)
	}
	return &m, nil
}

// paramTypeNames maps the manifest's YAML type names onto the
// dispatcher's ParamType enum.
var paramTypeNames = map[string]hpjsrpc.ParamType{
	"any":    hpjsrpc.ParamAny,
	"string": hpjsrpc.ParamString,
	"number": hpjsrpc.ParamNumber,
	"bool":   hpjsrpc.ParamBool,
	"object": hpjsrpc.ParamObject,
	"array":  hpjsrpc.ParamArray,
	"null":   hpjsrpc.ParamNull,
}

// Records builds hpjsrpc.MethodRecords from the manifest, pairing
// each declared method with a handler from the supplied table. A
// method named in the manifest with no matching handler is an error:
// a manifest describes what is actually installed, not aspirational
// API surface.
func (m *Manifest) Records(handlers map[string]hpjsrpc.HandlerFunc) ([]hpjsrpc.MethodRecord, error) {
	records := make([]hpjsrpc.MethodRecord, 0, len(m.Methods))
	for _, spec := range m.Methods {
		handler, ok := handlers[spec.Name]
		if !ok {
			return nil, fmt.Errorf("hpjsrpc/manifest: method %q has no handler", spec.Name)
		}
		params := make([]hpjsrpc.ParamType, len(spec.Params))
		for i, p := range spec.Params {
			pt, ok := paramTypeNames[p.Type]
			if !ok {
				return nil, fmt.Errorf("hpjsrpc/manifest: method %q: unknown param type %q", spec.Name, p.Type)
			}
			params[i] = pt
		}
		records = append(records, hpjsrpc.MethodRecord{
			Name:           spec.Name,
			Handler:        handler,
			IsNotification: spec.Notification,
			Params:         params,
		})
	}
	return records, nil
}

// Describe renders the manifest as JSON, suitable for a
// "rpc.describe" style introspection method.
func (m *Manifest) Describe() ([]byte, error) {
	return json.Marshal(m)
}
