package main

import "github.com/dylandreimerink/asmviz/cmd"

func main() {
	cmd.Execute()
}
