package main

import "github.com/emiliopalmerini/mclaude-statusline/internal/cli"

func main() {
	cli.Execute()
}
