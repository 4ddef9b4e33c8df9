package main

import "dwellmetrics/api/cli"

func main() {
	cli.Execute()
}
