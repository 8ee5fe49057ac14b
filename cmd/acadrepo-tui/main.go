package main

import "github.com/davidayox123/acadrepo-tui/internal/cli"

func main() {
	cli.Execute()
}
