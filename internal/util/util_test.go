// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateWidth(t *testing.T) {
	require.Equal(t, "hello", TruncateWidth("hello", 10))
	require.Equal(t, "hel...", TruncateWidth("hello world", 6))
	require.Equal(t, "", TruncateWidth("hello", 0))

	// Each CJK rune occupies two columns.
	got := TruncateWidth("日本語のテキスト", 7)
	require.LessOrEqual(t, len([]rune(got)), 4)
	require.Contains(t, got, "...")
}

func TestOneLine(t *testing.T) {
	require.Equal(t, "a b c", OneLine("  a\n\tb   c \n"))
	require.Equal(t, "", OneLine("\n\n"))
}

func TestMaskSecret(t *testing.T) {
	require.Equal(t, "", MaskSecret(""))
	require.Equal(t, "****", MaskSecret("short"))
	require.Equal(t, "****wxyz", MaskSecret("AIzaSyabcdefwxyz"))
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0600))
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}
