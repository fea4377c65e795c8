package main

import "ccmeter/cmd"

func main() {
	cmd.Execute()
}
