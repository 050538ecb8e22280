// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command hpjsrpcd reads a single JSON-RPC request from stdin, runs
// it through an hpjsrpc.Engine preloaded with a handful of
// demonstration methods, and prints the framed response to stdout. It
// is a direct translation of the reference C client's main(), kept
// around as a runnable example rather than as a server.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/hpjsrpc/hpjsrpc"
	"github.com/hpjsrpc/hpjsrpc/manifest"
)

const (
	inputBufSize  = 2048
	outputBufSize = 2048
	maxTokens     = 1024
)

// handlers maps the bundled demonstration methods by name, both for
// the default registration and for pairing with a -manifest file.
var handlers = map[string]hpjsrpc.HandlerFunc{
	"echo":                hpjsrpc.EchoHandler,
	"pow":                 hpjsrpc.PowHandler,
	"subtract.positional": hpjsrpc.SubtractHandler,
	"subtract.named":      hpjsrpc.SubtractHandler,
}

func main() {
	manifestPath := flag.String("manifest", "", "YAML manifest declaring method shapes; defaults to the built-in table")
	describe := flag.Bool("describe", false, "print the manifest's JSON introspection document and exit (requires -manifest)")
	flag.Parse()

	if err := run(*manifestPath, *describe); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func records(manifestPath string, describe bool) ([]hpjsrpc.MethodRecord, error) {
	if manifestPath == "" {
		if describe {
			return nil, fmt.Errorf("hpjsrpcd: -describe requires -manifest")
		}
		return []hpjsrpc.MethodRecord{
			{
				Name:    "echo",
				Handler: handlers["echo"],
				Params:  []hpjsrpc.ParamType{hpjsrpc.ParamString},
			},
			{
				Name:    "pow",
				Handler: handlers["pow"],
			},
			{
				Name:    "subtract.positional",
				Handler: handlers["subtract.positional"],
				Params:  []hpjsrpc.ParamType{hpjsrpc.ParamNumber, hpjsrpc.ParamNumber},
			},
			{
				Name:    "subtract.named",
				Handler: handlers["subtract.named"],
			},
		}, nil
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	if describe {
		doc, err := m.Describe()
		if err != nil {
			return nil, err
		}
		fmt.Println(string(doc))
		os.Exit(0)
	}
	return m.Records(handlers)
}

func run(manifestPath string, describe bool) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("hpjsrpcd: building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	recs, err := records(manifestPath, describe)
	if err != nil {
		return err
	}

	engine := hpjsrpc.New(
		hpjsrpc.WithLogger(logger),
		hpjsrpc.WithMaxTokens(maxTokens),
	)
	if err := engine.Register(recs...); err != nil {
		return fmt.Errorf("hpjsrpcd: registering methods: %w", err)
	}

	input := make([]byte, inputBufSize)
	n, err := os.Stdin.Read(input)
	if err != nil && err != io.EOF {
		return fmt.Errorf("hpjsrpcd: reading stdin: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("hpjsrpcd: no input on stdin")
	}

	resp := hpjsrpc.NewResponseBuffer(make([]byte, outputBufSize))
	kind, stats := engine.Process(input[:n], resp)

	if resp.Len() > 0 {
		fmt.Printf(">> %s\n", resp.Bytes())
	} else {
		fmt.Println(">> no reply")
	}
	fmt.Printf("%s (parse=%s validate=%s resolve=%s invoke=%s frame=%s)\n",
		kind, stats.Parse, stats.Validate, stats.Resolve, stats.Invoke, stats.Frame)

	return nil
}
