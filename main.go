package main

import "github.com/jnspo1/chatgpt-stats/cmd"

func main() {
	cmd.Execute()
}
