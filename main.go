package main

import "github.com/Bitlatte/portfolio/cmd"

func main() {
	cmd.Execute()
}
