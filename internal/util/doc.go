// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across portfolio-chat.
//
// # Key Functions
//
// String Utilities:
//   - OneLine: collapse whitespace runs into single spaces
//   - TruncateWidth: display-width truncation (CJK, emoji) via go-runewidth
//   - MaskSecret: redact credentials for logs and config dumps
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	preview := util.TruncateWidth(toolOutput, 60)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
