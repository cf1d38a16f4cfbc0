package main

import (
	"os"

	"github.com/saqibullah/diabetes-prediction-form/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
