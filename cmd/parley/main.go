// Package main provides the parley CLI: agents that answer natural-language
// requests by calling GitHub and Slack tools, either through fast-path
// intents or through tool-invocation tags embedded in model completions.
//
// Basic usage:
//
//	parley query --agent github "summarize pull request #42"
//	parley serve --config parley.yaml
//	parley schema
//
// Configuration is read from parley.yaml (override with --config or
// PARLEY_CONFIG). API keys are normally supplied through environment
// variables referenced from the config file.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
