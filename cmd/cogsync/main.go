package main

import (
	"os"

	"cogsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
