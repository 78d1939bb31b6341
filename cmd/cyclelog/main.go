package main

import (
	"context"
	"fmt"
	"os"

	"github.com/terraincognita07/cyclelog/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "cyclelog: %v\n", err)
		os.Exit(1)
	}
}
