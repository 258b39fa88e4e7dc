// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript archives a summary of every chat request in SQLite.
//
// Only metadata is kept: timing, terminal state, step and tool counts, token
// usage and the error kind. Message text is never stored, and client keys are
// stored as a BLAKE2b digest so the archive cannot be joined back to an IP.
package transcript
