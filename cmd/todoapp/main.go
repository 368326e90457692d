package main

import (
	"os"

	"github.com/frezix0/TodoReact/cmd/todoapp/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
