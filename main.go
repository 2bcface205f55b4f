package main

import "gridsync/cmd"

func main() {
	cmd.Execute()
}
