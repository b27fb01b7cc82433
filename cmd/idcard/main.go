package main

import (
	"fmt"
	"os"

	"github.com/Aashish23092/ocr-idcard-extraction/cmd/idcard/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
