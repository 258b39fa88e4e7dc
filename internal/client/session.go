// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jeranaias/portfolio-chat/internal/chat"
)

// MaxInputLength is the longest message a session will send, in characters.
const MaxInputLength = 1024

var (
	// ErrEmptyInput indicates a blank message.
	ErrEmptyInput = errors.New("message is empty")

	// ErrInputTooLong indicates a message over MaxInputLength.
	ErrInputTooLong = fmt.Errorf("message is too long, please keep it under %d characters", MaxInputLength)

	// ErrBusy indicates a Send while an answer is still streaming.
	ErrBusy = errors.New("assistant is still typing")
)

// UpdateFunc receives a copy of the in-progress assistant message after each
// applied event.
type UpdateFunc func(msg chat.UIMessage)

// Session holds one conversation. It is safe for concurrent use; only one
// Send runs at a time.
type Session struct {
	client *Client

	mu       sync.RWMutex
	messages []chat.UIMessage
	typing   bool
	lastErr  error
}

// NewSession starts an empty conversation against c.
func NewSession(c *Client) *Session {
	return &Session{client: c}
}

// Typing reports whether an answer is being streamed.
func (s *Session) Typing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []chat.UIMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.UIMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastError returns the error of the most recent Send, if any.
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Reset clears the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.lastErr = nil
}

// Send appends a user message and streams the answer, calling onUpdate as
// the assistant message grows. The assistant message is kept in the
// conversation even when the stream fails part way.
func (s *Session) Send(ctx context.Context, text string, onUpdate UpdateFunc) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(text) > MaxInputLength {
		return ErrInputTooLong
	}

	s.mu.Lock()
	if s.typing {
		s.mu.Unlock()
		return ErrBusy
	}
	s.typing = true
	s.lastErr = nil
	s.messages = append(s.messages, chat.NewUserMessage(uuid.NewString(), text))
	history := make([]chat.UIMessage, len(s.messages))
	copy(history, s.messages)
	s.mu.Unlock()

	asm := newAssembler()
	err := s.client.Stream(ctx, history, func(ev chat.Event) error {
		if asm.apply(ev) {
			s.mu.Lock()
			s.typing = false
			s.mu.Unlock()
		}
		if onUpdate != nil {
			onUpdate(asm.snapshot())
		}
		return nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing = false
	s.lastErr = err
	if len(asm.msg.Parts) > 0 {
		s.messages = append(s.messages, asm.snapshot())
	}
	return err
}

// =============================================================================
// MESSAGE ASSEMBLY
// =============================================================================

// assembler builds an assistant message from stream events.
type assembler struct {
	msg chat.UIMessage
	// textParts indexes open text parts by stream part ID.
	textParts map[string]int
}

func newAssembler() *assembler {
	return &assembler{
		msg:       chat.UIMessage{ID: uuid.NewString(), Role: "assistant"},
		textParts: make(map[string]int),
	}
}

// apply folds ev into the message. It reports whether ev ends the answer.
func (a *assembler) apply(ev chat.Event) bool {
	switch ev.Type {
	case chat.EventStart:
		if ev.MessageID != "" {
			a.msg.ID = ev.MessageID
		}

	case chat.EventStartStep:
		// Marks where a later step begins so the server can replay the turn
		// step by step.
		if len(a.msg.Parts) > 0 {
			a.msg.Parts = append(a.msg.Parts, chat.UIPart{Type: chat.PartStepStart})
		}

	case chat.EventTextStart:
		a.textParts[ev.ID] = len(a.msg.Parts)
		a.msg.Parts = append(a.msg.Parts, chat.UIPart{Type: chat.PartText})

	case chat.EventTextDelta:
		idx, ok := a.textParts[ev.ID]
		if !ok {
			idx = len(a.msg.Parts)
			a.textParts[ev.ID] = idx
			a.msg.Parts = append(a.msg.Parts, chat.UIPart{Type: chat.PartText})
		}
		a.msg.Parts[idx].Text += ev.Delta

	case chat.EventTextEnd:
		delete(a.textParts, ev.ID)

	case chat.EventToolInputAvailable:
		a.msg.Parts = append(a.msg.Parts, chat.UIPart{
			Type:       chat.PartToolCall,
			ToolCallID: ev.ToolCallID,
			ToolName:   ev.ToolName,
			Input:      ev.Input,
		})

	case chat.EventToolOutputAvailable:
		a.msg.Parts = append(a.msg.Parts, chat.UIPart{
			Type:       chat.PartToolResult,
			ToolCallID: ev.ToolCallID,
			ToolName:   a.toolName(ev.ToolCallID),
			Output:     ev.Output,
			State:      chat.StateOutputAvailable,
		})

	case chat.EventToolOutputError:
		a.msg.Parts = append(a.msg.Parts, chat.UIPart{
			Type:       chat.PartToolResult,
			ToolCallID: ev.ToolCallID,
			ToolName:   a.toolName(ev.ToolCallID),
			ErrorText:  ev.ErrorText,
			State:      chat.StateOutputError,
		})

	case chat.EventFinish, chat.EventError:
		return true
	}
	return false
}

// toolName finds the name of the call a result answers.
func (a *assembler) toolName(callID string) string {
	for i := len(a.msg.Parts) - 1; i >= 0; i-- {
		p := a.msg.Parts[i]
		if p.Type == chat.PartToolCall && p.ToolCallID == callID {
			return p.ToolName
		}
	}
	return ""
}

// snapshot returns a copy safe to hand to callers.
func (a *assembler) snapshot() chat.UIMessage {
	out := a.msg
	out.Parts = make([]chat.UIPart, len(a.msg.Parts))
	copy(out.Parts, a.msg.Parts)
	return out
}
