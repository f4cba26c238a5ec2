package main

import "streamline/cmd"

func main() {
	cmd.Execute()
}
