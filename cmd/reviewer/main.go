package main

import (
	"os"

	"github.com/prathamc00/AI-Code-Reviewer/internal/app"
)

func main() {
	if err := app.BuildRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
