package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fmueller/vidtranslate/internal/cli"
	"github.com/spf13/cobra"
)

var usageErrorPatterns = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"invalid argument",
	"accepts ",
	"requires at least",
	"requires at most",
	"requires between",
}

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if shouldPrintUsageHint(err) {
			fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", helpHintTarget(cmd, os.Args[1:]))
		}
		os.Exit(1)
	}
}

func shouldPrintUsageHint(err error) bool {
	if err == nil {
		return false
	}

	message := strings.ToLower(strings.TrimSpace(err.Error()))
	for _, pattern := range usageErrorPatterns {
		if strings.Contains(message, pattern) {
			return true
		}
	}
	return false
}

// helpHintTarget names the subcommand the user was invoking, if any.
func helpHintTarget(root *cobra.Command, args []string) string {
	if root == nil {
		return "vidtranslate"
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return root.CommandPath()
	}

	found, _, err := root.Find(args)
	if err != nil || found == nil {
		return root.CommandPath()
	}
	return found.CommandPath()
}
