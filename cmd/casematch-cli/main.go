// cmd/casematch-cli/main.go
package main

import (
	"os"

	"casematch-workers/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
