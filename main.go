package main

import "github.com/tinyracing/race-manager-go/cmd"

func main() {
	cmd.Execute()
}
