package main

import "github.com/veeru594/ai-agent/internal/cli"

func main() {
	cli.Execute()
}
