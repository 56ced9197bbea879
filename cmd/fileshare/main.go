package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Nithin3003/cloud-share-it/internal/client/cli"
)

func main() {
	cmd := cli.NewRootCommand(context.Background(), cli.Deps{})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
