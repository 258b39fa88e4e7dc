// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/portfolio-chat/internal/chat"
	"github.com/jeranaias/portfolio-chat/internal/client"
	"github.com/jeranaias/portfolio-chat/internal/config"
	"github.com/jeranaias/portfolio-chat/internal/content"
	"github.com/jeranaias/portfolio-chat/internal/llm/llmtest"
	"github.com/jeranaias/portfolio-chat/internal/ratelimit"
	"github.com/jeranaias/portfolio-chat/internal/server"
	"github.com/jeranaias/portfolio-chat/internal/tools"
)

func init() {
	ForceColorsEnabled(false)
}

// isolate points HOME at a temp dir and clears credential variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GOOGLE_GENERATIVE_AI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	config.ResetGlobalForTesting()
	return home
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Contains(t, out, "portfolio-chat version "+Version)
}

func TestPromptCmd(t *testing.T) {
	out, err := execute(t, "", "prompt")
	require.NoError(t, err)
	require.Contains(t, out, "TOOL USAGE RULES (CRITICAL):")
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := execute(t, "", "config", "init", "--path", path)
	require.NoError(t, err)
	require.Contains(t, out, "[OK] wrote "+path)

	_, err = execute(t, "", "config", "init", "--path", path)
	require.ErrorContains(t, err, "already exists")

	_, err = execute(t, "", "config", "init", "--path", path, "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "per_client_daily = 100")

	out, err = execute(t, "", "--config", path, "config", "show")
	require.NoError(t, err)
	require.Contains(t, out, "gemini-2.5-flash")
	require.Contains(t, out, "Credential set      false")
}

func TestConfigShow_BadPath(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.toml"), "config", "show")
	require.Error(t, err)
}

// =============================================================================
// SERVE
// =============================================================================

func TestRunServe(t *testing.T) {
	isolate(t)
	cfg := config.Default()
	cfg.Server.BurstRPS = 0
	cfg.Transcripts.Enabled = true
	cfg.Transcripts.Path = filepath.Join(t.TempDir(), "transcripts.db")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, ln) }()

	// No credential: the server runs degraded and rejects chat with config_error.
	var health server.HealthResponse
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return json.NewDecoder(resp.Body).Decode(&health) == nil
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "gemini-2.5-flash", health.Model)
	require.True(t, health.Transcripts)

	err = client.New(base).Stream(context.Background(), nil, nil)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Equal(t, chat.CodeConfigError, apiErr.Code)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestOpenLimitStore(t *testing.T) {
	store, err := openLimitStore(config.LimitsConfig{Store: "memory"})
	require.NoError(t, err)
	require.IsType(t, &ratelimit.MemoryStore{}, store)
	require.NoError(t, store.Close())

	store, err = openLimitStore(config.LimitsConfig{Store: "badger", BadgerDir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &ratelimit.BadgerStore{}, store)
	require.NoError(t, store.Close())
}

// =============================================================================
// CHAT
// =============================================================================

func startChatServer(t *testing.T, steps ...llmtest.Step) string {
	t.Helper()
	cfg := config.Default()
	cfg.Model.APIKey = "test-key"
	cfg.Server.BurstRPS = 0

	catalog, err := content.Default()
	require.NoError(t, err)
	exec := tools.NewExecutor(tools.NewPortfolioRegistry(catalog))
	orch := chat.NewOrchestrator(llmtest.New(steps...), exec, "system")
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), 100, 1000)

	ts := httptest.NewServer(server.New(cfg, orch, limiter, exec).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestRunChat_Piped(t *testing.T) {
	isolate(t)
	url := startChatServer(t,
		llmtest.Call("c1", tools.GetTechStackName, map[string]any{}),
		llmtest.Text("I work with ", "React."),
	)

	session := client.NewSession(client.New(url))
	var out bytes.Buffer
	in := strings.NewReader("What do you use?\n/history\n/bogus\n/quit\nnever sent\n")

	require.NoError(t, runChat(context.Background(), session, &out, in, nil, url))

	got := out.String()
	require.Contains(t, got, "-> getTechStack {}")
	require.Contains(t, got, "ok getTechStack")
	require.Contains(t, got, "I work with React.")
	require.Contains(t, got, "user:      What do you use?")
	require.Contains(t, got, "unknown command /bogus")
	require.Len(t, session.Messages(), 2)
}

func TestAskCmd(t *testing.T) {
	isolate(t)
	url := startChatServer(t, llmtest.Text("Hello from the portfolio."))

	out, err := execute(t, "", "ask", "--server", url, "--plain", "hi", "there")
	require.NoError(t, err)
	require.Contains(t, out, "Hello from the portfolio.")
}

func TestAskCmd_FromStdin(t *testing.T) {
	isolate(t)
	url := startChatServer(t, llmtest.Text("Piped answer."))

	out, err := execute(t, "who are you?\n", "ask", "--server", url, "--plain")
	require.NoError(t, err)
	require.Contains(t, out, "Piped answer.")
}

func TestAskCmd_EmptyQuestion(t *testing.T) {
	isolate(t)
	_, err := execute(t, "  \n", "ask", "--server", "http://127.0.0.1:1", "--plain")
	require.ErrorContains(t, err, "message is empty")
}

// =============================================================================
// RENDERING
// =============================================================================

func TestStreamPrinter_Live(t *testing.T) {
	var out bytes.Buffer
	p := newStreamPrinter(&out, nil)

	msg := chat.UIMessage{Role: "assistant"}
	msg.Parts = []chat.UIPart{{Type: chat.PartText, Text: "Hel"}}
	p.update(msg)
	msg.Parts[0].Text = "Hello"
	p.update(msg)
	msg.Parts = append(msg.Parts,
		chat.UIPart{Type: chat.PartToolCall, ToolName: "searchProjects", Input: map[string]any{"query": "go"}},
		chat.UIPart{Type: chat.PartToolResult, ToolName: "searchProjects", State: chat.StateOutputError, ErrorText: "boom"},
	)
	p.update(msg)
	p.finish(msg)

	require.Equal(t, "Hello\n-> searchProjects {\"query\":\"go\"}\nx searchProjects: boom\n\n", out.String())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"collapse   inner\nspace", 40, "collapse inner space"},
		{"abcdefghij", 6, "abc..."},
		{"日本語テキスト", 7, "日本..."},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Truncate(tt.in, tt.width), tt.in)
	}
}
