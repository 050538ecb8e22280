// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package hpjsrpc

import (
	"testing"

	tassert "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseBufferAppend(t *testing.T) {
	b := NewResponseBuffer(make([]byte, 32))
	require.NoError(t, b.Printf("%s=%d", "answer", 42))
	tassert.Equal(t, "answer=42", string(b.Bytes()))
	tassert.Equal(t, 9, b.Len())
	tassert.Equal(t, 32, b.Cap())

	require.NoError(t, b.Printf(",%q", "x"))
	tassert.Equal(t, `answer=42,"x"`, string(b.Bytes()))
}

func TestResponseBufferOverflowLeavesSizeUnchanged(t *testing.T) {
	b := NewResponseBuffer(make([]byte, 8))
	require.NoError(t, b.Printf("1234"))

	err := b.Printf("56789")
	tassert.ErrorIs(t, err, ErrBufferOverflow)
	tassert.Equal(t, 4, b.Len())
	tassert.Equal(t, "1234", string(b.Bytes()))

	// an exact fit is not an overflow
	require.NoError(t, b.Printf("5678"))
	tassert.Equal(t, "12345678", string(b.Bytes()))

	_, err = b.Write([]byte("x"))
	tassert.ErrorIs(t, err, ErrBufferOverflow)
}

func TestResponseBufferRewind(t *testing.T) {
	b := NewResponseBuffer(make([]byte, 16))
	require.NoError(t, b.Printf("discarded"))
	b.Rewind()
	tassert.Equal(t, 0, b.Len())

	require.NoError(t, b.Printf("kept"))
	tassert.Equal(t, "kept", string(b.Bytes()))
}

func TestResponseBufferZeroCapacity(t *testing.T) {
	b := NewResponseBuffer(nil)
	tassert.Equal(t, 0, b.Cap())
	tassert.ErrorIs(t, b.Printf("x"), ErrBufferOverflow)
	tassert.Equal(t, 0, b.Len())
}
