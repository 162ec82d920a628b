package main

import "orgtasks/internal/cli"

func main() {
	cli.Execute()
}
