package main

import (
	"fmt"
	"os"

	"github.com/yeremiapane/smartmenu-api/cmd"
)

func main() {
	root, err := cmd.RootCommand()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
