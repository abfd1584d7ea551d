package main

import "github.com/tallysheet/tally/cmd"

func main() {
	cmd.Execute()
}
