package main

import (
	"reviewsynth/cmd/handlers"
)

func main() {
	// The logger is initialised from configuration by the root command.
	handlers.Execute()
}
