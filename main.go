package main

import "github.com/bz888/accbuddy/cmd"

func main() {
	cmd.Execute()
}
