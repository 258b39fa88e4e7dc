// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client consumes the chat API stream.
//
// # Key Types
//
//   - Client: posts a conversation to /api/chat and decodes the SSE events
//   - SSEReader: frame parser for "data:" events
//   - Session: conversation state with a typing indicator, applying events
//     to the in-progress assistant message as they arrive
//   - ErrorType: client-side error classification with user-facing messages
//
// # Usage
//
//	c := client.New("http://127.0.0.1:8787")
//	s := client.NewSession(c)
//	err := s.Send(ctx, "What projects use React?", func(m chat.UIMessage) {
//	    render(m)
//	})
//	if err != nil {
//	    fmt.Println(client.Classify(err).Message())
//	}
package client
