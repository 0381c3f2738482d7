package main

import "drawbot/cmd"

func main() {
	cmd.Execute()
}
