// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package hpjsrpc

import (
	"fmt"

	"github.com/segmentio/encoding/json"
)

// Version is the only JSON-RPC version this engine speaks.
const Version = "2.0"

// ID is a request identifier, used only by the wire-level types below
// (introspection JSON, log correlation) and never by the zero-copy
// dispatch hot path, which reads ids directly out of the token
// arena. Only one of name or number is meaningful; which one is
// indicated by isString.
type ID struct {
	name     string
	number   float64
	isString bool
}

var (
	_ fmt.Formatter    = (*ID)(nil)
	_ json.Marshaler   = (*ID)(nil)
	_ json.Unmarshaler = (*ID)(nil)
)

// NewNumberID returns a new number-valued ID. float64 is the same
// number model the request decoder produces, so a fractional or large
// id survives the round trip without truncation.
func NewNumberID(v float64) ID { return ID{number: v} }

// NewStringID returns a new string-valued ID.
func NewStringID(v string) ID { return ID{name: v, isString: true} }

// Format writes the ID to the formatter. With the 'q' verb the
// representation is non-ambiguous: string forms are quoted, number
// forms are preceded by '#'.
func (id ID) Format(f fmt.State, r rune) {
	numF, strF := `%g`, `%s`
	if r == 'q' {
		numF, strF = `#%g`, `%q`
	}
	if id.isString {
		fmt.Fprintf(f, strF, id.name)
		return
	}
	fmt.Fprintf(f, numF, id.number)
}

// MarshalJSON implements json.Marshaler.
func (id *ID) MarshalJSON() ([]byte, error) {
	if id.isString {
		return json.Marshal(id.name)
	}
	return json.Marshal(id.number)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ID{}
	if err := json.Unmarshal(data, &id.number); err == nil {
		return nil
	}
	id.isString = true
	return json.Unmarshal(data, &id.name)
}

// idFromToken converts a validated id Token into a wire ID, used for
// log correlation and nowhere on the hot path.
func idFromToken(t Token, buf []byte) *ID {
	if t.Type == Primitive && string(t.Bytes(buf)) == "null" {
		return nil
	}
	if t.Type == String {
		id := NewStringID(string(t.Bytes(buf)))
		return &id
	}
	v, _, ok := ParseNumber(t.Bytes(buf))
	if !ok {
		return nil
	}
	id := NewNumberID(v)
	return &id
}
