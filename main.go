package main

import "github.com/kamusis/skill-cortex/cmd"

func main() {
	cmd.Execute()
}
