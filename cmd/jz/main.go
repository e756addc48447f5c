package main

import "github.com/mcoot/jeopardyze-client/internal/cli"

func main() {
	cli.Execute()
}
