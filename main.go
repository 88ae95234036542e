package main

import "github.com/faiver-90/converter-photo/internal/cli"

func main() {
	cli.Execute()
}
