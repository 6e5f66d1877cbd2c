package main

import "github.com/nfrund/goonies/cmd/goonies-cli/cmd"

func main() {
	cmd.Execute()
}
