package main

import "cronyo/cmd"

func main() {
	cmd.Execute()
}
