package main

import "paramload/cmd"

func main() {
	cmd.Execute()
}
