// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"bufio"
	"bytes"
	"io"
)

// MaxEventSize is the maximum allowed size of a single SSE line (1MB).
const MaxEventSize = 1 << 20

// doneSentinel terminates a chat stream.
var doneSentinel = []byte("[DONE]")

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	scanner *bufio.Scanner
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxEventSize)
	return &SSEReader{scanner: scanner}
}

// ReadEvent reads the next SSE event from the stream.
// Returns the event type, data, and any error.
// The event type is empty for chat streams, which only use data fields.
// Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte

	for s.scanner.Scan() {
		line := bytes.TrimRight(s.scanner.Bytes(), "\r")

		// Empty line signals end of event
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[6:]))
		case bytes.HasPrefix(line, []byte("data:")):
			data := bytes.TrimPrefix(line[5:], []byte(" "))
			// Scanner reuses its buffer.
			dataLines = append(dataLines, bytes.Clone(data))
		}
		// Ignore other fields (id:, retry:, comments starting with :)
	}

	if err := s.scanner.Err(); err != nil {
		return "", nil, err
	}
	// If we have data, return it before EOF
	if len(dataLines) > 0 {
		return eventType, bytes.Join(dataLines, []byte("\n")), nil
	}
	return "", nil, io.EOF
}

// isDone reports whether data is the end-of-stream sentinel.
func isDone(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), doneSentinel)
}
