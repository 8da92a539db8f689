package main

import "vdata-pipeline/internal/cli"

func main() {
	cli.Execute()
}
