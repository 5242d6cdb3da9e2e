// Package main is the entry point for the auth API.
//
// @title Auth API
// @version 1.0
// @description Username, email and password authentication with email based password reset.
// @BasePath /
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
