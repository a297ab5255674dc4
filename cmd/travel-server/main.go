package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "travel-server",
		Short:        "Travel planning chat backend",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(), newChatCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
