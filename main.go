package main

import "aptly-ctl/internal/cli"

func main() {
	cli.Execute()
}
