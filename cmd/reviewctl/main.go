package main

import (
	"os"

	"github.com/bravo6co-debug/ai-riview/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
