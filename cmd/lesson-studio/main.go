package main

import (
	"os"

	"github.com/rcliao/lesson-studio/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
