package main

import "github.com/skillsage/voice-interview/internal/cli"

func main() {
	cli.Execute()
}
