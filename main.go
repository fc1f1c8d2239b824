package main

import "github.com/obiesoto/herald/cmd"

func main() {
	cmd.Execute()
}
