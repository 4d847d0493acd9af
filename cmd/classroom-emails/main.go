package main

import "github.com/pfrederiksen/classroom-emails/internal/cli"

func main() {
	cli.Execute()
}
