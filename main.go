// portfolio-chat - AI assistant backend and terminal client for a portfolio site.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/portfolio-chat/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
