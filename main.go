package main

import "github.com/javanhut/simplegit/cli"

func main() {
	cli.Execute()
}
