// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/portfolio-chat/internal/chat"
)

// toolPreviewWidth caps tool input previews.
const toolPreviewWidth = 60

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// newMarkdownRenderer returns a glamour renderer sized to the terminal, or nil
// when rendering is off or unavailable.
func newMarkdownRenderer(enabled bool) *glamour.TermRenderer {
	if !enabled || !IsStdoutTTY() {
		return nil
	}
	width := GetTerminalWidth() - 4
	if width > MaxRenderWidth {
		width = MaxRenderWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		return nil
	}
	return r
}

// renderMarkdown renders content, returning it unchanged on failure.
func renderMarkdown(r *glamour.TermRenderer, content string) string {
	if r == nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// TOOL LINES
// =============================================================================

// formatToolCall renders a tool invocation as one line.
func formatToolCall(p chat.UIPart) string {
	args := "{}"
	if p.Input != nil {
		if data, err := json.Marshal(p.Input); err == nil {
			args = string(data)
		}
	}
	return RenderConditional(ToolStyle, fmt.Sprintf("-> %s %s", p.ToolName, Truncate(args, toolPreviewWidth)))
}

// formatToolResult renders a tool outcome as one line.
func formatToolResult(p chat.UIPart) string {
	if p.State == chat.StateOutputError || p.ErrorText != "" {
		return RenderConditional(WarningStyle, fmt.Sprintf("x %s: %s", p.ToolName, Truncate(p.ErrorText, toolPreviewWidth)))
	}
	return RenderConditional(DimStyle, fmt.Sprintf("ok %s", p.ToolName))
}

// =============================================================================
// STREAM PRINTER
// =============================================================================

// streamPrinter writes an assistant message incrementally from Session
// snapshots. In live mode text is written as it arrives; otherwise only tool
// lines are, and the text is rendered once by finish.
type streamPrinter struct {
	out  io.Writer
	live bool
	md   *glamour.TermRenderer

	parts   int // parts fully written
	textLen int // bytes of the open text part already written
	wrote   bool
}

func newStreamPrinter(out io.Writer, md *glamour.TermRenderer) *streamPrinter {
	return &streamPrinter{out: out, live: md == nil, md: md}
}

// update writes whatever msg has beyond what was already written.
func (p *streamPrinter) update(msg chat.UIMessage) {
	for i := p.parts; i < len(msg.Parts); i++ {
		part := msg.Parts[i]
		last := i == len(msg.Parts)-1

		switch part.Type {
		case chat.PartText:
			if p.live && len(part.Text) > p.textLen {
				fmt.Fprint(p.out, part.Text[p.textLen:])
				p.wrote = true
			}
			if last {
				// Still open; later snapshots may extend it.
				p.textLen = len(part.Text)
				return
			}
			if p.live && part.Text != "" {
				fmt.Fprintln(p.out)
			}
			p.textLen = 0
		case chat.PartToolCall:
			fmt.Fprintln(p.out, formatToolCall(part))
			p.wrote = true
		case chat.PartToolResult:
			fmt.Fprintln(p.out, formatToolResult(part))
			p.wrote = true
		}
		p.parts = i + 1
	}
}

// finish completes the output for the final message.
func (p *streamPrinter) finish(msg chat.UIMessage) {
	if p.live {
		if p.wrote {
			fmt.Fprintln(p.out)
		}
		return
	}
	if text := msg.TextOf(); text != "" {
		fmt.Fprint(p.out, renderMarkdown(p.md, text))
	}
}
