package main

import "github.com/mcoot/anagrams/internal/cli"

func main() {
	cli.Execute()
}
