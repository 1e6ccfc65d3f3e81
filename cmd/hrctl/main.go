package main

import "github.com/MrEthical07/hrportal/cmd/hrctl/cmd"

func main() {
	cmd.Execute()
}
