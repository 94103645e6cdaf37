package main

import "github.com/dojocodes/dojo-deploy/internal/cli"

func main() {
	cli.Execute()
}
