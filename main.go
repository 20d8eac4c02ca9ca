package main

import "github.com/ahmed-coding/Gravitas-Core/cmd"

func main() {
	cmd.Execute()
}
