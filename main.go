package main

import "github.com/datascribe/datascribe-cli/cmd"

func main() {
	cmd.Execute()
}
