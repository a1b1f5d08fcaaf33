package main

import "github.com/kjans/mboxkit/cmd"

func main() {
	cmd.Execute()
}
