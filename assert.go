// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !hpjsrpc.release

package hpjsrpc

import "fmt"

// assert panics if cond is false. It compiles out entirely under the
// hpjsrpc.release build tag (see assert_release.go), so invariant
// checks on the hot path cost nothing in a release build.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("hpjsrpc: assertion failed: "+format, args...))
	}
}
