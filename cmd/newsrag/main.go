// Command newsrag is the entry point for the news retrieval-augmented
// question answering service. It provides a CLI interface (via Cobra) for
// ingesting a news corpus and an HTTP server that answers questions over it.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/newsrag-go/cmd/newsrag/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
