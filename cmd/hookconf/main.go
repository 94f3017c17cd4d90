package main

import "github.com/clubworks/hookconf/pkg/cli/cmd"

func main() {
	cmd.Execute()
}
