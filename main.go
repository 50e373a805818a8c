package main

import "github.com/twiced-technology-gmbh/tasklist/cmd"

func main() {
	cmd.Execute()
}
