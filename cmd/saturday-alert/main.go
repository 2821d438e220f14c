package main

import "github.com/pfrederiksen/saturday-alert/internal/cli"

func main() {
	cli.Execute()
}
