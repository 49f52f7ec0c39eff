package main

import (
	"context"
	"os"

	"github.com/thenoetrevino/circles/cmd"
)

func main() {
	os.Exit(cmd.Execute(context.Background()))
}
