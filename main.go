package main

import "github.com/atiptools/atiplint/cmd"

func main() {
	cmd.Execute()
}
