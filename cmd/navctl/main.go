package main

import "github.com/netznav/navigator/internal/cli"

func main() {
	cli.Execute()
}
