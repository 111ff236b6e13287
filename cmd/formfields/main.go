package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-formfields/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "formfields:", err)
		os.Exit(1)
	}
}
