package main

import "github.com/andrescamacho/furniture-factory/internal/adapters/cli"

func main() {
	cli.Execute()
}
