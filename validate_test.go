// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package hpjsrpc

import (
	"testing"

	tassert "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTokenize(t *testing.T, buf []byte) []Token {
	t.Helper()
	tokens := make([]Token, 64)
	n, err := DefaultTokenizer.Tokenize(buf, tokens)
	require.NoError(t, err)
	return tokens[:n]
}

func TestValidateAccepts(t *testing.T) {
	buf := []byte(`{"jsonrpc":"2.0","method":"echo","params":["hi"],"id":1}`)
	tokens := mustTokenize(t, buf)
	req, kind := Validate(buf, tokens, len(tokens))
	require.Equal(t, KindOK, kind)
	tassert.False(t, req.IsNotification)
	tassert.Equal(t, "echo", string(req.RawMethod()))
	tassert.True(t, req.HasParams())
	tassert.Equal(t, Array, req.ParamsType())
}

func TestValidateAcceptsNullID(t *testing.T) {
	buf := []byte(`{"jsonrpc":"2.0","method":"echo","params":[],"id":null}`)
	tokens := mustTokenize(t, buf)
	req, kind := Validate(buf, tokens, len(tokens))
	require.Equal(t, KindOK, kind)
	// an explicit null id is treated the same as an absent id: the
	// request is a notification and gets no reply.
	tassert.True(t, req.IsNotification)
	tassert.True(t, req.idIsNull())
}

func TestValidateNotification(t *testing.T) {
	buf := []byte(`{"jsonrpc":"2.0","method":"echo","params":["hi"]}`)
	tokens := mustTokenize(t, buf)
	req, kind := Validate(buf, tokens, len(tokens))
	require.Equal(t, KindOK, kind)
	tassert.True(t, req.IsNotification)
}

func TestValidateRejectsNonObjectOuter(t *testing.T) {
	buf := []byte(`["echo"]`)
	tokens := mustTokenize(t, buf)
	_, kind := Validate(buf, tokens, len(tokens))
	tassert.Equal(t, KindInvalidOuter, kind)
}

func TestValidateRejectsBadVersion(t *testing.T) {
	cases := []string{
		`{"jsonrpc":"1.0","method":"echo","params":[]}`,
		`{"method":"echo","params":[]}`,
		`{"jsonrpc":2.0,"method":"echo","params":[]}`,
	}
	for _, c := range cases {
		buf := []byte(c)
		tokens := mustTokenize(t, buf)
		_, kind := Validate(buf, tokens, len(tokens))
		tassert.Equal(t, KindInvalidVersion, kind, c)
	}
}

func TestValidateFailureKeepsViewAndID(t *testing.T) {
	// a failing validation still hands back the view, with the id
	// cached and the notification classification already made, so the
	// error framer can echo the id or stay silent
	buf := []byte(`{"jsonrpc":"1.0","method":"echo","params":[],"id":7}`)
	tokens := mustTokenize(t, buf)
	req, kind := Validate(buf, tokens, len(tokens))
	require.Equal(t, KindInvalidVersion, kind)
	require.NotNil(t, req)
	tassert.True(t, req.HasID())
	tassert.Equal(t, "7", string(req.idBytes()))
	tassert.False(t, req.IsNotification)

	buf2 := []byte(`{"jsonrpc":"1.0","method":"echo","params":[]}`)
	tokens2 := mustTokenize(t, buf2)
	req2, kind2 := Validate(buf2, tokens2, len(tokens2))
	require.Equal(t, KindInvalidVersion, kind2)
	require.NotNil(t, req2)
	tassert.True(t, req2.IsNotification)
}

func TestValidateInvalidIDDropsIDCache(t *testing.T) {
	buf := []byte(`{"jsonrpc":"2.0","method":"echo","params":[],"id":true}`)
	tokens := mustTokenize(t, buf)
	req, kind := Validate(buf, tokens, len(tokens))
	require.Equal(t, KindInvalidID, kind)
	require.NotNil(t, req)
	tassert.False(t, req.HasID())
	tassert.False(t, req.IsNotification)
}

func TestValidateRejectsBadMethod(t *testing.T) {
	cases := []string{
		`{"jsonrpc":"2.0","params":[]}`,
		`{"jsonrpc":"2.0","method":42,"params":[]}`,
	}
	for _, c := range cases {
		buf := []byte(c)
		tokens := mustTokenize(t, buf)
		_, kind := Validate(buf, tokens, len(tokens))
		tassert.Equal(t, KindInvalidMethod, kind, c)
	}
}

func TestValidateRequiresParams(t *testing.T) {
	// params is a required member here, unlike stock JSON-RPC 2.0.
	buf := []byte(`{"jsonrpc":"2.0","method":"echo"}`)
	tokens := mustTokenize(t, buf)
	_, kind := Validate(buf, tokens, len(tokens))
	tassert.Equal(t, KindInvalidParams, kind)
}

func TestValidateRejectsScalarParams(t *testing.T) {
	buf := []byte(`{"jsonrpc":"2.0","method":"echo","params":"hi"}`)
	tokens := mustTokenize(t, buf)
	_, kind := Validate(buf, tokens, len(tokens))
	tassert.Equal(t, KindInvalidParams, kind)
}

func TestValidateRejectsUppercaseNull(t *testing.T) {
	// only lowercase "null" is accepted as an id; "NULL" is just a
	// malformed primitive.
	buf := []byte(`{"jsonrpc":"2.0","method":"echo","params":[],"id":NULL}`)
	tokens, err := tokenizeLenient(buf)
	if err != nil {
		// a strict tokenizer may refuse NULL outright; either outcome
		// demonstrates the literal is rejected.
		return
	}
	_, kind := Validate(buf, tokens, len(tokens))
	tassert.Equal(t, KindInvalidID, kind)
}

func tokenizeLenient(buf []byte) ([]Token, error) {
	tokens := make([]Token, 64)
	n, err := DefaultTokenizer.Tokenize(buf, tokens)
	if err != nil {
		return nil, err
	}
	return tokens[:n], nil
}

func TestValidateDuplicateMemberLastWins(t *testing.T) {
	buf := []byte(`{"jsonrpc":"2.0","method":"first","method":"second","params":[],"id":1}`)
	tokens := mustTokenize(t, buf)
	req, kind := Validate(buf, tokens, len(tokens))
	require.Equal(t, KindOK, kind)
	tassert.Equal(t, "second", string(req.RawMethod()))
}

func TestValidateAcceptsStringAndNumberID(t *testing.T) {
	buf := []byte(`{"jsonrpc":"2.0","method":"echo","params":[],"id":"abc-123"}`)
	tokens := mustTokenize(t, buf)
	req, kind := Validate(buf, tokens, len(tokens))
	require.Equal(t, KindOK, kind)
	tassert.Equal(t, "abc-123", string(req.idBytes()))

	buf2 := []byte(`{"jsonrpc":"2.0","method":"echo","params":[],"id":-7}`)
	tokens2 := mustTokenize(t, buf2)
	req2, kind2 := Validate(buf2, tokens2, len(tokens2))
	require.Equal(t, KindOK, kind2)
	tassert.Equal(t, "-7", string(req2.idBytes()))
}
