// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package hpjsrpc

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Stats records how long each dispatch stage took for one Process
// call. It is only ever populated on the happy path up to the stage
// that failed; later fields stay zero.
type Stats struct {
	Parse    time.Duration
	Validate time.Duration
	Resolve  time.Duration
	Invoke   time.Duration
	Frame    time.Duration
}

// These constants name the states of the per-request state machine:
// a request starts idle, and moves forward one stage at a time until
// it is framed successfully or fails and moves to errored.
const (
	stateIdle       = "idle"
	stateValidating = "validating"
	stateResolving  = "resolving"
	stateInvoking   = "invoking"
	stateFramed     = "framed"
	stateErrored    = "errored"
)

func newDispatchFSM(logger *zap.Logger) *fsm.FSM {
	return fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: "validate", Src: []string{stateIdle}, Dst: stateValidating},
			{Name: "resolve", Src: []string{stateValidating}, Dst: stateResolving},
			{Name: "invoke", Src: []string{stateResolving}, Dst: stateInvoking},
			{Name: "frame", Src: []string{stateInvoking}, Dst: stateFramed},
			{Name: "fail", Src: []string{stateIdle, stateValidating, stateResolving, stateInvoking}, Dst: stateErrored},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug("dispatch state transition",
					zap.String("from", e.Src),
					zap.String("to", e.Dst),
					zap.String("event", e.Event),
				)
			},
		},
	)
}

// step advances the per-request state machine. An illegal transition
// means a hole in Process's control flow, so it trips the debug-build
// assertion rather than being silently swallowed.
func (d *Dispatcher) step(ctx context.Context, machine *fsm.FSM, event string) {
	err := machine.Event(ctx, event)
	assert(err == nil, "dispatch: %s transition from state %s: %v", event, machine.Current(), err)
}

// Dispatcher drives one request through the validate, resolve, and
// invoke pipeline and frames either a success or an error response.
// It owns a reusable token arena so repeated Process calls never
// allocate one.
type Dispatcher struct {
	registry  *Registry
	tokenizer Tokenizer
	tokens    []Token
	logger    *zap.Logger

	validateParams bool
}

// DispatcherOption configures a Dispatcher at construction time. The
// exported options an embedder actually reaches for live on EngineOption;
// these exist so New can wire Dispatcher directly.
type DispatcherOption func(*Dispatcher)

// dispatcherWithTokenizer overrides the Tokenizer used to parse each request.
func dispatcherWithTokenizer(t Tokenizer) DispatcherOption {
	return func(d *Dispatcher) { d.tokenizer = t }
}

// dispatcherWithLogger attaches a zap logger used to trace per-stage
// transitions and durations.
func dispatcherWithLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// dispatcherWithParamValidation enables or disables arity/type checking of
// params against a resolved MethodRecord's declared shape.
func dispatcherWithParamValidation(enabled bool) DispatcherOption {
	return func(d *Dispatcher) { d.validateParams = enabled }
}

// NewDispatcher returns a Dispatcher backed by registry, with a token
// arena sized for maxTokens tokens per request.
func NewDispatcher(registry *Registry, maxTokens int, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry:       registry,
		tokenizer:      DefaultTokenizer,
		tokens:         make([]Token, maxTokens),
		logger:         zap.NewNop(),
		validateParams: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	assert(d.registry != nil, "NewDispatcher: nil registry")
	assert(d.tokenizer != nil, "NewDispatcher: nil tokenizer")
	return d
}

// Process parses, validates, resolves, and invokes buf as a single
// JSON-RPC request, framing the result (or an error) into resp. It
// returns the terminal Kind and per-stage timing stats.
//
// Process never retains buf or resp past the call, and the token
// arena it uses internally is reused across calls: it is not safe to
// call Process concurrently on the same Dispatcher.
func (d *Dispatcher) Process(buf []byte, resp *ResponseBuffer) (Kind, Stats) {
	var stats Stats
	ctx := context.Background()
	machine := newDispatchFSM(d.logger)

	parseStart := time.Now()
	n, err := d.tokenizer.Tokenize(buf, d.tokens)
	stats.Parse = time.Since(parseStart)
	if err != nil {
		d.step(ctx, machine, "fail")
		return d.frameParseError(err, resp), stats
	}

	d.step(ctx, machine, "validate")
	validateStart := time.Now()
	req, kind := Validate(buf, d.tokens, n)
	stats.Validate = time.Since(validateStart)
	if kind != KindOK {
		d.step(ctx, machine, "fail")
		return d.frameError(req, kind, resp), stats
	}

	d.step(ctx, machine, "resolve")
	resolveStart := time.Now()
	rec, found := d.registry.lookup(req.RawMethod())
	stats.Resolve = time.Since(resolveStart)
	if !found {
		d.step(ctx, machine, "fail")
		return d.frameError(req, KindMethodNotFound, resp), stats
	}
	req.Method = rec
	if rec.IsNotification {
		// a notification-only method never gets a reply, even when
		// the request carried an id
		req.IsNotification = true
	}

	if d.validateParams && len(rec.Params) > 0 {
		if !paramsMatch(req, rec.Params) {
			d.step(ctx, machine, "fail")
			return d.frameError(req, KindParamsMismatch, resp), stats
		}
	}

	d.step(ctx, machine, "invoke")

	// A notification, or a caller that supplied no output room, gets
	// no envelope at all: the handler still runs for its side
	// effects, but whatever it wrote is discarded.
	if req.IsNotification || resp.Cap() == 0 {
		invokeStart := time.Now()
		kind = d.invoke(req, resp)
		stats.Invoke = time.Since(invokeStart)
		resp.Rewind()
		if kind != KindOK {
			d.step(ctx, machine, "fail")
			return kind, stats
		}
		d.step(ctx, machine, "frame")
		return KindOK, stats
	}

	// The envelope preamble goes in before the handler runs, so the
	// handler appends only its result value.
	frameStart := time.Now()
	if k := d.framePreamble(req, resp); k != KindOK {
		stats.Frame = time.Since(frameStart)
		d.step(ctx, machine, "fail")
		return d.frameError(req, k, resp), stats
	}
	stats.Frame = time.Since(frameStart)

	invokeStart := time.Now()
	kind = d.invoke(req, resp)
	stats.Invoke = time.Since(invokeStart)
	if kind != KindOK {
		d.step(ctx, machine, "fail")
		return d.frameError(req, kind, resp), stats
	}

	d.step(ctx, machine, "frame")
	closeStart := time.Now()
	if _, err := resp.Write([]byte(`}`)); err != nil {
		stats.Frame += time.Since(closeStart)
		return d.frameError(req, KindBufferOverflow, resp), stats
	}
	stats.Frame += time.Since(closeStart)
	d.logID(req)
	return KindOK, stats
}

// logID emits the resolved request id at debug level, using the wire
// ID type's Format verb so a numeric and a string id are distinguishable
// in a log line without re-deriving that distinction from raw bytes.
func (d *Dispatcher) logID(req *Request) {
	if req == nil || !req.HasID() {
		return
	}
	id := idFromToken(req.tokens[req.idTok], req.buf)
	if id == nil {
		return
	}
	d.logger.Debug("dispatch resolved id", zap.Stringer("method", methodStringer{req.RawMethod()}), zap.String("id", fmt.Sprintf("%q", id)))
}

// methodStringer adapts a raw method-name byte slice to fmt.Stringer
// for zap.Stringer, avoiding a string conversion on the non-debug path.
type methodStringer struct{ b []byte }

func (m methodStringer) String() string { return string(m.b) }

// invoke calls the resolved handler directly against resp. A failing
// handler's partial output (and the envelope preamble around it) is
// discarded by frameError's Rewind.
func (d *Dispatcher) invoke(req *Request, resp *ResponseBuffer) Kind {
	if req.Method.Handler == nil {
		// A nil handler can only reach here if a MethodRecord was
		// registered without one, which Registry.Register already
		// rejects: this is a caller invariant violation, not a
		// reachable runtime condition.
		assert(false, "invoke: resolved method %q has a nil handler", req.Method.Name)
		return KindAssertion
	}
	return req.Method.Handler(req, resp)
}

// framePreamble writes the success envelope up to and including the
// "result": key, leaving the buffer positioned for the handler to
// append its result value. The closing brace is written by Process
// after the handler returns.
func (d *Dispatcher) framePreamble(req *Request, resp *ResponseBuffer) Kind {
	if _, err := resp.Write([]byte(`{"jsonrpc":"2.0"`)); err != nil {
		return KindBufferOverflow
	}
	if err := d.writeID(req, resp); err != nil {
		return KindBufferOverflow
	}
	if _, err := resp.Write([]byte(`,"result":`)); err != nil {
		return KindBufferOverflow
	}
	return KindOK
}

// frameError discards any bytes the failing stage wrote and frames an
// error envelope instead. req is nil when validation never produced a
// view (e.g. malformed JSON, or the outer value wasn't an object), in
// which case the response carries a null id.
func (d *Dispatcher) frameError(req *Request, kind Kind, resp *ResponseBuffer) Kind {
	resp.Rewind()
	wire := wireCodeFor(kind)

	if req != nil && req.IsNotification {
		return kind
	}

	if err := resp.Printf(`{"jsonrpc":"2.0","error":{"code":%d,"message":%q}`, int64(wire), kind.String()); err != nil {
		resp.Rewind()
		return KindBufferOverflow
	}
	if req == nil {
		if _, err := resp.Write([]byte(`,"id":null}`)); err != nil {
			resp.Rewind()
			return KindBufferOverflow
		}
		return kind
	}
	if err := d.writeID(req, resp); err != nil {
		resp.Rewind()
		return KindBufferOverflow
	}
	if _, err := resp.Write([]byte(`}`)); err != nil {
		resp.Rewind()
		return KindBufferOverflow
	}
	return kind
}

// frameParseError handles a Tokenize failure, which happens before
// any Request view exists at all.
func (d *Dispatcher) frameParseError(err error, resp *ResponseBuffer) Kind {
	var kind Kind
	switch err {
	case ErrTokenNoMem:
		kind = KindParseNoMem
	case ErrTokenPartial:
		kind = KindParsePartial
	default:
		kind = KindParseInvalid
	}
	return d.frameError(nil, kind, resp)
}

// writeID appends the `,"id":...` member, substituting null when the
// request had no usable id: absent, null, or cached by the member
// scan but never vetted because validation failed at an earlier
// stage. Unvetted bytes are re-checked here rather than echoed
// blindly, so the envelope stays well-formed JSON.
func (d *Dispatcher) writeID(req *Request, resp *ResponseBuffer) error {
	if req == nil || !req.HasID() || req.idIsNull() {
		_, err := resp.Write([]byte(`,"id":null`))
		return err
	}
	tok := req.tokens[req.idTok]
	if !validID(tok, req.buf) {
		_, err := resp.Write([]byte(`,"id":null`))
		return err
	}
	raw := req.idBytes()
	if tok.Type == String {
		// raw is the source span between the quotes, escapes intact;
		// re-wrapping it in quotes reproduces the original literal
		return resp.Printf(`,"id":"%s"`, raw)
	}
	return resp.Printf(`,"id":%s`, raw)
}

// paramsMatch checks a request's positional params against a method's
// declared shape; a named (object) params value always passes.
func paramsMatch(req *Request, shape []ParamType) bool {
	switch req.ParamsType() {
	case Array:
		elems := req.ArrayElems()
		if len(elems) != len(shape) {
			return false
		}
		for i, want := range shape {
			if !typeMatches(req.tokens[elems[i]].Type, want) {
				return false
			}
		}
		return true
	case Object:
		// Named params are validated structurally by the handler
		// itself (it already rejects a missing member); the
		// registry-level shape check only applies to the positional
		// convention, where order stands in for names.
		return true
	default:
		return false
	}
}

func typeMatches(t TokenType, want ParamType) bool {
	switch want {
	case ParamAny:
		return true
	case ParamString:
		return t == String
	case ParamNumber, ParamBool, ParamNull:
		return t == Primitive
	case ParamObject:
		return t == Object
	case ParamArray:
		return t == Array
	default:
		return false
	}
}
