package main

import (
	"os"

	"github.com/bianoble/snipsync/cmd/snipsync/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
