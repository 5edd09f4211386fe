package main

import (
	"os"

	"github.com/naru-ai/naru/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
