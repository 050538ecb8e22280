// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package hpjsrpc

import (
	"errors"
	"fmt"
)

// ErrBufferOverflow is returned by ResponseBuffer.Printf when the
// formatted text does not fit in the remaining capacity.
var ErrBufferOverflow = errors.New("hpjsrpc: response buffer exhausted")

// ResponseBuffer is a caller-owned, fixed-capacity output buffer. The
// dispatcher only ever appends to it and never grows it: callers size
// Data up front (or reuse one across many Process calls via Rewind)
// so framing a response costs no allocation.
type ResponseBuffer struct {
	Data []byte
	pos  int
}

// NewResponseBuffer wraps a caller-supplied buffer. len(data) is the
// buffer's fixed capacity; it is never grown.
func NewResponseBuffer(data []byte) *ResponseBuffer {
	return &ResponseBuffer{Data: data}
}

// Len returns the number of bytes written since the last Rewind.
func (b *ResponseBuffer) Len() int {
	return b.pos
}

// Cap returns the buffer's fixed capacity.
func (b *ResponseBuffer) Cap() int {
	return len(b.Data)
}

// Bytes returns the bytes written so far.
func (b *ResponseBuffer) Bytes() []byte {
	return b.Data[:b.pos]
}

// Rewind resets the write position to the start of the buffer without
// releasing its backing array, so a Dispatcher can discard a partially
// framed response and start the error envelope from scratch.
func (b *ResponseBuffer) Rewind() {
	b.pos = 0
}

// Printf measures the formatted text and, only if it fits in the
// buffer's remaining capacity, appends it. On overflow the buffer is
// left unchanged and ErrBufferOverflow is returned.
func (b *ResponseBuffer) Printf(format string, args ...interface{}) error {
	// fmt.Appendf measures and formats in one pass into a throwaway
	// slice, at the cost of one temporary allocation per call. Nothing
	// in the request-processing hot path calls Printf more than twice
	// per request (the preamble and the handler's result), so a
	// hand-rolled bounded formatter is not worth carrying.
	text := fmt.Appendf(nil, format, args...)
	if b.pos+len(text) > len(b.Data) {
		return ErrBufferOverflow
	}
	b.pos += copy(b.Data[b.pos:b.pos+len(text)], text)
	return nil
}

// Write implements io.Writer, appending raw bytes without formatting.
func (b *ResponseBuffer) Write(p []byte) (int, error) {
	if b.pos+len(p) > len(b.Data) {
		return 0, ErrBufferOverflow
	}
	n := copy(b.Data[b.pos:b.pos+len(p)], p)
	b.pos += n
	return n, nil
}
