package main

import (
	"os"

	"github.com/dev-team-404/slea-ssem-sub001/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
