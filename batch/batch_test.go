// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpjsrpc/hpjsrpc"
	"github.com/hpjsrpc/hpjsrpc/batch"
)

func newTestEngine(t *testing.T) *hpjsrpc.Engine {
	t.Helper()
	e := hpjsrpc.New()
	require.NoError(t, e.Register(
		hpjsrpc.MethodRecord{
			Name:    "echo",
			Handler: hpjsrpc.EchoHandler,
			Params:  []hpjsrpc.ParamType{hpjsrpc.ParamString},
		},
	))
	return e
}

func TestDispatchMixedBatch(t *testing.T) {
	e := newTestEngine(t)
	req := `[
		{"jsonrpc":"2.0","method":"echo","params":["a"],"id":1},
		{"jsonrpc":"2.0","method":"echo","params":["b"]},
		{"jsonrpc":"2.0","method":"missing","params":[],"id":2}
	]`

	results, err := batch.Dispatch(e, []byte(req), 512)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, hpjsrpc.KindOK, results[0].Kind)
	assert.JSONEq(t, `{"jsonrpc":"2.0","result":"a","id":1}`, string(results[0].Response))

	assert.Equal(t, hpjsrpc.KindMethodNotFound, results[1].Kind)
	assert.Contains(t, string(results[1].Response), `"id":2`)
}

func TestDispatchRejectsEmptyBatch(t *testing.T) {
	e := newTestEngine(t)
	_, err := batch.Dispatch(e, []byte(`[]`), 512)
	assert.ErrorIs(t, err, batch.ErrEmptyBatch)
}

func TestDispatchRejectsNonArray(t *testing.T) {
	e := newTestEngine(t)
	_, err := batch.Dispatch(e, []byte(`{"jsonrpc":"2.0"}`), 512)
	assert.Error(t, err)
}
