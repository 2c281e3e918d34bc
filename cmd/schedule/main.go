package main

import "github.com/pfrederiksen/schedule/internal/cli"

func main() {
	cli.Execute()
}
