package main

import (
	"os"

	"github.com/codewriterrussian/voc-selftest/cmd/quizctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
