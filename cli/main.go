package main

import "github.com/ponyo877/pushy/cli/cmd"

func main() {
	cmd.Execute()
}
