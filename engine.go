// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package hpjsrpc

import (
	"io"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Engine is the embeddable entry point: it owns a method Registry and
// a Dispatcher, and tracks a couple of lightweight counters used for
// log correlation and diagnostics.
type Engine struct {
	registry   *Registry
	dispatcher *Dispatcher
	logger     *zap.Logger

	processed *atomic.Int64
	sequence  *atomic.Int64

	closers []io.Closer
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*engineConfig)

type engineConfig struct {
	logger           *zap.Logger
	maxMethodNameLen int
	maxTokens        int
	validateParams   bool
	tokenizer        Tokenizer
	closers          []io.Closer
}

// WithLogger attaches a zap.Logger used for both engine-level and
// per-request dispatch logging. The default is zap.NewNop().
func WithLogger(l *zap.Logger) EngineOption {
	return func(c *engineConfig) { c.logger = l }
}

// WithMaxMethodNameLength bounds the length of any name later accepted
// by Register. The default is MaxMethodNameLength (127); zero means
// unbounded.
func WithMaxMethodNameLength(n int) EngineOption {
	return func(c *engineConfig) { c.maxMethodNameLen = n }
}

// WithMaxTokens sizes the Dispatcher's reusable token arena. The
// default is 256, enough for several dozen flat params.
func WithMaxTokens(n int) EngineOption {
	return func(c *engineConfig) { c.maxTokens = n }
}

// WithParamValidation enables or disables arity/type checking of
// params against a method's declared shape. It
// defaults to enabled.
func WithParamValidation(enabled bool) EngineOption {
	return func(c *engineConfig) { c.validateParams = enabled }
}

// WithTokenizer overrides the Tokenizer the Dispatcher parses
// requests with. The default is DefaultTokenizer.
func WithTokenizer(t Tokenizer) EngineOption {
	return func(c *engineConfig) { c.tokenizer = t }
}

// WithCloser registers a teardown hook run by Engine.Close, in the
// order registered. Use it for anything an embedder hands the engine
// that itself needs closing (a manifest file handle, a batch worker
// pool).
func WithCloser(c io.Closer) EngineOption {
	return func(cfg *engineConfig) { cfg.closers = append(cfg.closers, c) }
}

// New builds an Engine ready to Register methods and Process requests.
func New(opts ...EngineOption) *Engine {
	cfg := &engineConfig{
		logger:           zap.NewNop(),
		maxMethodNameLen: MaxMethodNameLength,
		maxTokens:        256,
		validateParams:   true,
		tokenizer:        DefaultTokenizer,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	registry := NewRegistry(cfg.maxMethodNameLen)
	dispatcher := NewDispatcher(registry, cfg.maxTokens,
		dispatcherWithTokenizer(cfg.tokenizer),
		dispatcherWithLogger(cfg.logger),
		dispatcherWithParamValidation(cfg.validateParams),
	)

	return &Engine{
		registry:   registry,
		dispatcher: dispatcher,
		logger:     cfg.logger,
		processed:  atomic.NewInt64(0),
		sequence:   atomic.NewInt64(0),
		closers:    cfg.closers,
	}
}

// Register installs one or more methods. See Registry.Register for
// failure semantics.
func (e *Engine) Register(records ...MethodRecord) error {
	if err := e.registry.Register(records...); err != nil {
		return err
	}
	e.logger.Debug("methods registered", zap.Int("count", len(records)), zap.Int("total", e.registry.Len()))
	return nil
}

// MethodCount reports how many methods are currently installed.
func (e *Engine) MethodCount() int {
	return e.registry.Len()
}

// NextSequence returns a per-engine monotonically increasing counter,
// useful for correlating a request with its logged stats.
func (e *Engine) NextSequence() int64 {
	return e.sequence.Inc()
}

// Process parses, validates, resolves, and invokes buf as a single
// JSON-RPC request, framing the response into resp. It is equivalent
// to calling the underlying Dispatcher directly, plus bookkeeping.
func (e *Engine) Process(buf []byte, resp *ResponseBuffer) (Kind, Stats) {
	seq := e.NextSequence()
	kind, stats := e.dispatcher.Process(buf, resp)
	e.processed.Inc()
	e.logger.Debug("request processed",
		zap.Int64("seq", seq),
		zap.Stringer("result", kind),
		zap.Duration("parse", stats.Parse),
		zap.Duration("validate", stats.Validate),
		zap.Duration("resolve", stats.Resolve),
		zap.Duration("invoke", stats.Invoke),
		zap.Duration("frame", stats.Frame),
	)
	return kind, stats
}

// Processed reports the total number of requests handled since New.
func (e *Engine) Processed() int64 {
	return e.processed.Load()
}

// Close runs every registered teardown hook, aggregating any failures
// with multierr so one closer's error never masks another's.
func (e *Engine) Close() error {
	var err error
	for _, c := range e.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
