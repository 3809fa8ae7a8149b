package main

import "github.com/xvierd/trainer-cli/cmd"

func main() {
	cmd.Execute()
}
