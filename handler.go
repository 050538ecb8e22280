// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package hpjsrpc

import (
	"github.com/francoispqt/gojay"
)

// HandlerFunc is the shape of a registered method's implementation. A
// handler reads its parameters from req and writes its JSON-RPC
// "result" value (only the value, not the envelope) into resp. The
// dispatcher supplies the envelope before and after the call.
//
// A handler that cannot satisfy the request returns a non-OK Kind;
// the dispatcher discards anything the handler already wrote to resp
// and frames an error envelope instead.
type HandlerFunc func(req *Request, resp *ResponseBuffer) Kind

// ArrayElems returns the token indices of each element of a params
// array, in order. It does not check ParamsType(): on an Object it
// returns the member key and value tokens alternately, so callers
// that accept both positional and named params should check
// ParamsType() first.
func (r *Request) ArrayElems() []int {
	var out []int
	for i := r.tokens[r.paramsTok].FirstChild; i != NoIndex; i = r.tokens[i].NextSibling {
		out = append(out, i)
	}
	return out
}

// NamedParam returns the value token for a named params object member,
// or NoIndex if absent. It does not check ParamsType(): on an Array it
// pairs up consecutive elements as if they were keys and values.
func (r *Request) NamedParam(name string) int {
	return child(r.tokens, r.buf, r.paramsTok, name)
}

// Float64 decodes a number token's raw bytes via ParseNumber.
func (r *Request) Float64(tok int) (float64, bool) {
	v, rest, ok := ParseNumber(r.tokens[tok].Bytes(r.buf))
	return v, ok && len(rest) == 0
}

// EncodeResult is a convenience helper for handlers whose result is
// naturally expressed as a gojay.MarshalerJSONObject or
// MarshalerJSONArray, rather than assembled by hand with
// ResponseBuffer.Printf. It is opt-in: the zero-copy hot path never
// calls it, since gojay allocates an encoder and copies through it.
func EncodeResult(resp *ResponseBuffer, v interface{}) Kind {
	data, err := gojay.MarshalAny(v)
	if err != nil {
		return KindBufferOverflow
	}
	if _, err := resp.Write(data); err != nil {
		return KindBufferOverflow
	}
	return KindOK
}

// EchoHandler returns its single string parameter unchanged. It
// mirrors the "echo" method from the bundled C example client.
func EchoHandler(req *Request, resp *ResponseBuffer) Kind {
	if req.ParamsType() != Array {
		return KindParamsMismatch
	}
	elems := req.ArrayElems()
	if len(elems) != 1 || req.tokens[elems[0]].Type != String {
		return KindParamsMismatch
	}
	// the token span is the source text between the quotes, escapes
	// intact; re-wrapping it in quotes reproduces the original literal
	if err := resp.Printf(`"%s"`, req.tokens[elems[0]].Bytes(req.buf)); err != nil {
		return KindBufferOverflow
	}
	return KindOK
}

// PowHandler raises its first parameter to the power of its second,
// accepted either positionally ([base, exponent]) or by name
// ({"base":..,"exponent":..}). The exponent is truncated to an integer
// before use, so a fractional exponent is not supported. It mirrors the
// "pow" method from the bundled C example client.
func PowHandler(req *Request, resp *ResponseBuffer) Kind {
	var baseTok, expTok int
	switch req.ParamsType() {
	case Array:
		elems := req.ArrayElems()
		if len(elems) != 2 {
			return KindParamsMismatch
		}
		baseTok, expTok = elems[0], elems[1]
	case Object:
		baseTok = req.NamedParam("base")
		expTok = req.NamedParam("exponent")
		if baseTok == NoIndex || expTok == NoIndex {
			return KindParamsMismatch
		}
	default:
		return KindParamsMismatch
	}

	base, ok := req.Float64(baseTok)
	if !ok {
		return KindParamsMismatch
	}
	exp, ok := req.Float64(expTok)
	if !ok {
		return KindParamsMismatch
	}

	result := 1.0
	n := int(exp)
	negative := n < 0
	if negative {
		n = -n
	}
	for i := 0; i < n; i++ {
		result *= base
	}
	if negative {
		result = 1 / result
	}

	if err := resp.Printf("%g", result); err != nil {
		return KindBufferOverflow
	}
	return KindOK
}

// SubtractHandler computes minuend - subtrahend, accepted either
// positionally ([minuend, subtrahend]) or by name
// ({"minuend":..,"subtrahend":..}). It mirrors the two "subtract"
// variants from the bundled C example client.
func SubtractHandler(req *Request, resp *ResponseBuffer) Kind {
	var minuendTok, subtrahendTok int
	switch req.ParamsType() {
	case Array:
		elems := req.ArrayElems()
		if len(elems) != 2 {
			return KindParamsMismatch
		}
		minuendTok, subtrahendTok = elems[0], elems[1]
	case Object:
		minuendTok = req.NamedParam("minuend")
		subtrahendTok = req.NamedParam("subtrahend")
		if minuendTok == NoIndex || subtrahendTok == NoIndex {
			return KindParamsMismatch
		}
	default:
		return KindParamsMismatch
	}

	minuend, ok := req.Float64(minuendTok)
	if !ok {
		return KindParamsMismatch
	}
	subtrahend, ok := req.Float64(subtrahendTok)
	if !ok {
		return KindParamsMismatch
	}

	if err := resp.Printf("%f", minuend-subtrahend); err != nil {
		return KindBufferOverflow
	}
	return KindOK
}
