// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package batch decomposes a JSON-RPC batch request (a top-level JSON
// array of request objects, JSON-RPC 2.0 §6) into independent
// calls against an *hpjsrpc.Engine. It is a thin convenience layer:
// the core engine only ever sees one request object at a time.
package batch

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/multierr"

	"github.com/hpjsrpc/hpjsrpc"
)

// ErrEmptyBatch is returned by Dispatch when the input array has no
// elements, which JSON-RPC 2.0 treats as an invalid request in its
// own right.
var ErrEmptyBatch = errors.New("hpjsrpc/batch: empty batch array")

// Result pairs one batch element's framed response bytes with the
// outcome the engine reported for it.
type Result struct {
	Response []byte
	Kind     hpjsrpc.Kind
}

// Dispatch walks a top-level JSON array with jsoniter, running each
// element through engine.Process in turn and collecting the framed
// response bytes. Responses to notifications are empty per the core
// engine's contract and are omitted from the returned slice, matching
// the "Response objects" rule in the JSON-RPC 2.0 batch section.
//
// Dispatch does not itself run elements concurrently: a caller that
// wants parallel dispatch across engines should shard the batch
// itself, since a single *hpjsrpc.Engine is not safe for concurrent
// Process calls.
func Dispatch(engine *hpjsrpc.Engine, data []byte, bufSize int) ([]Result, error) {
	iter := jsoniter.ParseBytes(jsoniter.ConfigDefault, data)
	if iter.WhatIsNext() != jsoniter.ArrayValue {
		return nil, errors.New("hpjsrpc/batch: top-level value is not an array")
	}

	var results []Result
	var errs error
	count := 0

	for iter.ReadArray() {
		count++
		elem := iter.SkipAndReturnBytes()
		if iter.Error != nil {
			errs = multierr.Append(errs, iter.Error)
			continue
		}

		resp := hpjsrpc.NewResponseBuffer(make([]byte, bufSize))
		kind, _ := engine.Process(elem, resp)
		if resp.Len() == 0 {
			// a notification: no response object for this element
			continue
		}
		out := make([]byte, resp.Len())
		copy(out, resp.Bytes())
		results = append(results, Result{Response: out, Kind: kind})
	}

	if count == 0 {
		return nil, ErrEmptyBatch
	}
	return results, errs
}
