package main

import (
	"os"

	"github.com/jaskrrish/Go-QSim/internal/cli"
)

// api is qsim serve without the rest of the CLI
func main() {
	serveCmd := cli.NewServeCmd()
	serveCmd.Use = "api"
	serveCmd.SilenceUsage = true

	if err := serveCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
