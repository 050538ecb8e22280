// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build hpjsrpc.release

package hpjsrpc

// assert is a no-op under the hpjsrpc.release build tag.
func assert(cond bool, format string, args ...interface{}) {}
