// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

// Schema is the transcript database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS transcripts (
    id TEXT PRIMARY KEY,
    client_hash TEXT NOT NULL,
    model TEXT NOT NULL DEFAULT '',
    started_at INTEGER NOT NULL,  -- Unix millis
    finished_at INTEGER NOT NULL, -- Unix millis
    state TEXT NOT NULL,          -- finished, errored, rejected
    message_count INTEGER NOT NULL DEFAULT 0,
    steps INTEGER NOT NULL DEFAULT 0,
    tool_calls INTEGER NOT NULL DEFAULT 0,
    response_chars INTEGER NOT NULL DEFAULT 0,
    prompt_tokens INTEGER NOT NULL DEFAULT 0,
    completion_tokens INTEGER NOT NULL DEFAULT 0,
    error_kind TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transcripts_started_at ON transcripts(started_at);
CREATE INDEX IF NOT EXISTS idx_transcripts_client_hash ON transcripts(client_hash);
`
