package main

import "github.com/twiced-technology-gmbh/prism/cmd"

func main() {
	cmd.Execute()
}
