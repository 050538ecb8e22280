// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package hpjsrpc

// Validate checks a tokenized buffer against the JSON-RPC 2.0 request
// shape and returns a Request view over it. tokens[:n] must be the
// result of a successful Tokenize call on buf.
//
// On failure the view is still returned (nil only when the outer
// value is not an object, before any member was scanned): the cached
// id token and notification classification let the error framer echo
// the request's id, or suppress output entirely for a notification.
func Validate(buf []byte, tokens []Token, n int) (*Request, Kind) {
	if n == 0 || tokens[0].Type != Object {
		return nil, KindInvalidOuter
	}

	req := &Request{
		buf:        buf,
		tokens:     tokens,
		root:       0,
		versionTok: NoIndex,
		methodTok:  NoIndex,
		paramsTok:  NoIndex,
		idTok:      NoIndex,
	}

	// One pass over the object's members, caching the value token of
	// each recognized key. A duplicated member overwrites the earlier
	// cache entry, so the last occurrence wins.
	for key := tokens[0].FirstChild; key != NoIndex; {
		val := tokens[key].NextSibling
		if val == NoIndex {
			break
		}
		if tokens[key].Type == String {
			switch string(tokens[key].Bytes(buf)) {
			case "jsonrpc":
				req.versionTok = val
			case "method":
				req.methodTok = val
			case "params":
				req.paramsTok = val
			case "id":
				req.idTok = val
			}
		}
		key = tokens[val].NextSibling
	}

	// Classify before the structural gates below, so a notification
	// that fails any of them still produces no output.
	req.IsNotification = req.idTok == NoIndex || req.idIsNull()

	if req.versionTok == NoIndex || tokens[req.versionTok].Type != String {
		return req, KindInvalidVersion
	}
	if string(tokens[req.versionTok].Bytes(buf)) != Version {
		return req, KindInvalidVersion
	}

	if req.methodTok == NoIndex || tokens[req.methodTok].Type != String {
		return req, KindInvalidMethod
	}

	// params is a required member: a request that omits it entirely
	// is rejected, not defaulted to an empty array.
	if req.paramsTok == NoIndex {
		return req, KindInvalidParams
	}
	switch tokens[req.paramsTok].Type {
	case Array, Object:
	default:
		return req, KindInvalidParams
	}

	if req.idTok != NoIndex && !validID(tokens[req.idTok], buf) {
		// the id bytes are malformed, so the error envelope cannot
		// safely echo them; drop the cache and frame null instead
		req.idTok = NoIndex
		return req, KindInvalidID
	}

	return req, KindOK
}

// validID reports whether t is a JSON-RPC-legal id value: a string, a
// number, or the literal null. Only lowercase "null" is accepted;
// "NULL", "True", and similar case variants are rejected like any
// other malformed primitive.
func validID(t Token, buf []byte) bool {
	switch t.Type {
	case String:
		return true
	case Primitive:
		raw := t.Bytes(buf)
		if string(raw) == "null" {
			return true
		}
		_, rest, ok := ParseNumber(raw)
		return ok && len(rest) == 0
	default:
		return false
	}
}
