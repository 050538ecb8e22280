// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package hpjsrpc is an embeddable JSON-RPC 2.0 dispatch engine.
//
// It parses a single serialized request into a flat token tree,
// validates it against the JSON-RPC 2.0 specification, resolves the
// named method against a registry of handlers, invokes the handler,
// and frames a compliant response into a caller-supplied buffer. The
// transport, the tokenizer's internals, logging destinations, and
// process lifecycle are all external collaborators; this package only
// ever touches the byte buffers it is handed.
package hpjsrpc // import "github.com/hpjsrpc/hpjsrpc"
