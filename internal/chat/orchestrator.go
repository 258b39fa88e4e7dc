// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/portfolio-chat/internal/llm"
	"github.com/jeranaias/portfolio-chat/internal/tools"
)

const (
	// DefaultMaxSteps bounds model invocations per request.
	DefaultMaxSteps = 5

	// DefaultMaxDuration bounds the wall-clock time of one request.
	DefaultMaxDuration = 30 * time.Second
)

// ErrSinkClosed wraps a Sink failure, typically a disconnected client.
var ErrSinkClosed = errors.New("stream sink closed")

// =============================================================================
// OUTCOME
// =============================================================================

// State is the terminal state of a run.
type State string

const (
	StateFinished State = "finished"
	StateErrored  State = "errored"
)

// Outcome summarizes one run.
type Outcome struct {
	MessageID string
	State     State

	// Messages is the number of conversation messages sent to the model.
	Messages  int
	Steps     int
	ToolCalls int

	// Text is the assistant text streamed across all steps.
	Text  string
	Usage llm.Usage

	// Err is set when State is StateErrored.
	Err *llm.Error

	// Committed reports whether any event reached the sink.
	Committed bool

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (o *Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxSteps sets the step ceiling. Values below one are ignored.
func WithMaxSteps(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxSteps = n
		}
	}
}

// WithMaxDuration sets the per-request deadline. Zero disables it.
func WithMaxDuration(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.maxDuration = d
	}
}

// Orchestrator runs the model/tool step loop for one request at a time.
// It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	model       llm.Model
	exec        *tools.Executor
	system      string
	maxSteps    int
	maxDuration time.Duration
}

// NewOrchestrator binds a model, the tool executor and the system prompt.
func NewOrchestrator(model llm.Model, exec *tools.Executor, system string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		model:       model,
		exec:        exec,
		system:      system,
		maxSteps:    DefaultMaxSteps,
		maxDuration: DefaultMaxDuration,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ModelName returns the bound model's name.
func (o *Orchestrator) ModelName() string { return o.model.Name() }

// Run streams an answer to msgs into sink.
//
// The returned error is non-nil only when the run failed before any event was
// sent; the caller still owns the response and should answer with
// FromUpstream(err). Once committed, failures are reported in-stream and the
// Outcome carries them.
func (o *Orchestrator) Run(ctx context.Context, msgs []UIMessage, sink Sink) (*Outcome, error) {
	if o.maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.maxDuration)
		defer cancel()
	}

	r := &run{
		o:       o,
		sink:    sink,
		history: ToLLM(msgs),
		outcome: &Outcome{
			MessageID: uuid.NewString(),
			StartedAt: time.Now(),
		},
	}
	r.outcome.Messages = len(r.history)

	err := r.loop(ctx)
	r.outcome.FinishedAt = time.Now()
	r.outcome.Text = r.text.String()

	out := r.outcome
	if err != nil {
		out.State = StateErrored
		out.Err = llm.Classify("chat.run", err)
		if errors.Is(err, ErrSinkClosed) {
			out.Err.Kind = llm.KindCanceled
		}
	} else {
		out.State = StateFinished
	}

	log.Printf("CHAT_FINISHED | messages=%d steps=%d tool_calls=%d state=%s",
		out.Messages, out.Steps, out.ToolCalls, out.State)

	if err != nil && !out.Committed {
		return out, out.Err
	}
	return out, nil
}

// run is the state of one Run call.
type run struct {
	o       *Orchestrator
	sink    Sink
	history []llm.Message
	outcome *Outcome
	text    strings.Builder
}

func (r *run) loop(ctx context.Context) error {
	req := llm.Request{System: r.o.system}
	if r.o.exec != nil {
		req.Tools = r.o.exec.Registry().Specs()
	}

	for step := 1; step <= r.o.maxSteps; step++ {
		r.outcome.Steps = step
		if step > 1 {
			if err := r.send(Event{Type: EventStartStep}); err != nil {
				return err
			}
		}

		req.Messages = r.history
		calls, err := r.streamStep(ctx, req)
		if err != nil {
			return r.fail(err)
		}

		if len(calls) == 0 {
			if err := r.send(Event{Type: EventFinishStep}); err != nil {
				return err
			}
			break
		}

		// Calls from the last step still run; only the next invocation is skipped.

		if err := r.dispatch(ctx, calls); err != nil {
			return err
		}
		if err := r.send(Event{Type: EventFinishStep}); err != nil {
			return err
		}
	}

	return r.send(Event{Type: EventFinish})
}

// streamStep runs one model invocation, forwarding text as it arrives. The
// assistant turn is appended to history; requested tool calls are returned.
func (r *run) streamStep(ctx context.Context, req llm.Request) ([]llm.ToolCall, error) {
	var (
		textID    string
		stepText  strings.Builder
		calls     []llm.ToolCall
		stepUsage llm.Usage
	)

	for chunk, err := range r.o.model.Stream(ctx, req) {
		if err != nil {
			r.text.WriteString(stepText.String())
			if textID != "" {
				_ = r.send(Event{Type: EventTextEnd, ID: textID})
			}
			return nil, err
		}
		if chunk.Usage != nil {
			stepUsage = *chunk.Usage
		}
		if chunk.Text != "" {
			if textID == "" {
				textID = uuid.NewString()
				if err := r.send(Event{Type: EventTextStart, ID: textID}); err != nil {
					return nil, err
				}
			}
			if err := r.send(Event{Type: EventTextDelta, ID: textID, Delta: chunk.Text}); err != nil {
				return nil, err
			}
			stepText.WriteString(chunk.Text)
		}
		calls = append(calls, chunk.ToolCalls...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.outcome.Usage.Add(stepUsage)

	// An empty answer still opens the stream so the client sees a finish.
	if err := r.commit(); err != nil {
		return nil, err
	}
	if textID != "" {
		if err := r.send(Event{Type: EventTextEnd, ID: textID}); err != nil {
			return nil, err
		}
	}

	turn := llm.Message{Role: llm.RoleAssistant}
	if stepText.Len() > 0 {
		turn.Parts = append(turn.Parts, llm.Part{Text: stepText.String()})
		r.text.WriteString(stepText.String())
	}
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = "call_" + uuid.NewString()
		}
		if calls[i].Args == nil {
			calls[i].Args = map[string]any{}
		}
		turn.Parts = append(turn.Parts, llm.Part{ToolCall: &calls[i]})
	}
	if len(turn.Parts) > 0 {
		r.history = append(r.history, turn)
	}
	return calls, nil
}

// dispatch runs tool calls in order and folds their results into history.
func (r *run) dispatch(ctx context.Context, calls []llm.ToolCall) error {
	turn := &r.history[len(r.history)-1]
	for _, call := range calls {
		r.outcome.ToolCalls++
		if err := r.send(Event{
			Type:       EventToolInputAvailable,
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Input:      call.Args,
		}); err != nil {
			return err
		}

		var res tools.Result
		if r.o.exec == nil {
			res = tools.Result{Error: "unknown tool: " + call.Name}
		} else {
			res = r.o.exec.Execute(ctx, tools.ToolCall{ID: call.ID, Name: call.Name, Params: call.Args})
		}

		ev := Event{Type: EventToolOutputAvailable, ToolCallID: call.ID, Output: res.Value}
		if !res.Success {
			ev = Event{Type: EventToolOutputError, ToolCallID: call.ID, ErrorText: res.Error}
		}
		if err := r.send(ev); err != nil {
			return err
		}

		turn.Parts = append(turn.Parts, llm.Part{ToolResult: &llm.ToolResult{
			CallID: call.ID,
			Name:   call.Name,
			Output: res.Output(),
		}})
	}
	return nil
}

// fail reports err in-stream when the stream is already open.
func (r *run) fail(err error) error {
	if !r.outcome.Committed || errors.Is(err, ErrSinkClosed) {
		return err
	}
	kind := llm.KindOf(err)
	_ = r.sink.Send(Event{Type: EventError, ErrorText: kind.Message()})
	return err
}

// commit sends the stream preamble once.
func (r *run) commit() error {
	if r.outcome.Committed {
		return nil
	}
	r.outcome.Committed = true
	if err := r.sink.Send(Event{Type: EventStart, MessageID: r.outcome.MessageID}); err != nil {
		return errors.Join(ErrSinkClosed, err)
	}
	if err := r.sink.Send(Event{Type: EventStartStep}); err != nil {
		return errors.Join(ErrSinkClosed, err)
	}
	return nil
}

func (r *run) send(ev Event) error {
	if err := r.commit(); err != nil {
		return err
	}
	if err := r.sink.Send(ev); err != nil {
		return errors.Join(ErrSinkClosed, err)
	}
	return nil
}
