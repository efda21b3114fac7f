package main

import "github.com/nextlevelbuilder/kitedash/cmd"

func main() {
	cmd.Execute()
}
