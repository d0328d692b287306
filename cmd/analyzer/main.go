package main

import (
	"fmt"
	"os"

	"github.com/telegram-work-analyzer/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
