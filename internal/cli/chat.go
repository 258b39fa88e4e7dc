// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat against a running server.
//
// Interactive Commands (during chat):
//
//	/help, /h           Show available commands
//	/clear, /c          Clear conversation history
//	/history            Show conversation history
//	/quit, /q           Exit chat
//	Ctrl+C              Cancel the current answer
//	Ctrl+D              Exit chat

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/portfolio-chat/internal/chat"
	"github.com/jeranaias/portfolio-chat/internal/client"
	"github.com/jeranaias/portfolio-chat/internal/config"
)

// historyFileName is the liner history file inside the config directory.
const historyFileName = "chat_history"

func newChatCmd(opts *options) *cobra.Command {
	var (
		serverURL string
		plain     bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat with a running portfolio-chat server.
Answers stream as they are generated; tool activity is shown inline.`,
		Example: `  portfolio-chat chat
  portfolio-chat chat --server https://chat.example.com
  portfolio-chat chat --plain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if serverURL == "" {
				serverURL = cfg.Client.ServerURL
			}

			session := client.NewSession(client.New(serverURL))
			md := newMarkdownRenderer(cfg.Client.RenderMarkdown && !plain)
			return runChat(cmd.Context(), session, cmd.OutOrStdout(), cmd.InOrStdin(), md, serverURL)
		},
	}
	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Server base URL (overrides config)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Stream plain text instead of rendered markdown")
	return cmd
}

// lineReader abstracts liner so piped input works too.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close()
}

// linerReader provides history and line editing on a terminal.
type linerReader struct {
	line        *liner.State
	historyFile string
}

func newLinerReader() *linerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &linerReader{line: line}
	if path, err := config.DataPath(historyFileName); err == nil {
		r.historyFile = path
		if f, err := os.Open(path); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (r *linerReader) Close() {
	if r.historyFile != "" && config.EnsureConfigDir() == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// scanReader reads lines from a non-terminal input.
type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) ReadLine(string) (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scanReader) Close() {}

// runChat is the REPL loop.
func runChat(ctx context.Context, session *client.Session, out io.Writer, in io.Reader, md *glamour.TermRenderer, serverURL string) error {
	var reader lineReader
	if f, ok := in.(*os.File); ok && f == os.Stdin && IsTTY() {
		reader = newLinerReader()
	} else {
		reader = &scanReader{scanner: bufio.NewScanner(in)}
	}
	defer reader.Close()

	fmt.Fprintln(out, RenderConditional(TitleStyle, "portfolio-chat"))
	fmt.Fprintln(out, RenderConditional(DimStyle, fmt.Sprintf("Connected to %s. Type /help for commands.", serverURL)))

	for {
		input, err := reader.ReadLine(RenderConditional(PromptStyle, "you> "))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D, or end of piped input
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if !handleSlashCommand(input, session, out) {
				return nil
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		if err := sendMessage(ctx, session, out, input, md); err != nil {
			fmt.Fprintf(out, "%s %s\n", RenderConditional(ErrorStyle, "[Error]"), userMessage(err))
		}
	}
}

// sendMessage streams one answer. Ctrl+C cancels the answer, not the session.
func sendMessage(ctx context.Context, session *client.Session, out io.Writer, input string, md *glamour.TermRenderer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	printer := newStreamPrinter(out, md)
	before := len(session.Messages())

	err := session.Send(ctx, input, printer.update)
	// A new assistant message follows the new user message.
	if msgs := session.Messages(); len(msgs) >= before+2 {
		printer.finish(msgs[len(msgs)-1])
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, RenderConditional(WarningStyle, "[Cancelled]"))
		return nil
	}
	return err
}

// userMessage returns the text shown for a failed send.
func userMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrEmptyInput), errors.Is(err, client.ErrInputTooLong), errors.Is(err, client.ErrBusy):
		return err.Error()
	}
	return client.UserMessage(err)
}

// handleSlashCommand runs a /command. It returns false to exit.
func handleSlashCommand(input string, session *client.Session, out io.Writer) bool {
	cmd := strings.ToLower(strings.Fields(input)[0])
	switch cmd {
	case "/quit", "/q", "/exit":
		return false
	case "/clear", "/c":
		session.Reset()
		fmt.Fprintln(out, RenderConditional(DimStyle, "Conversation cleared."))
	case "/history":
		printHistory(out, session.Messages())
	case "/help", "/h":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  /help, /h      Show this help")
		fmt.Fprintln(out, "  /clear, /c     Clear conversation history")
		fmt.Fprintln(out, "  /history       Show conversation history")
		fmt.Fprintln(out, "  /quit, /q      Exit chat")
	default:
		fmt.Fprintf(out, "%s unknown command %s (try /help)\n", RenderConditional(WarningStyle, "[Warning]"), cmd)
	}
	return true
}

func printHistory(out io.Writer, msgs []chat.UIMessage) {
	if len(msgs) == 0 {
		fmt.Fprintln(out, RenderConditional(DimStyle, "No messages yet."))
		return
	}
	width := GetTerminalWidth() - 12
	for _, m := range msgs {
		fmt.Fprintf(out, "%-10s %s\n", m.Role+":", Truncate(m.TextOf(), width))
	}
}
