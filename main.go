package main

import "github.com/KostasZigo/gitcore/cmd"

func main() {
	cmd.Execute()
}
