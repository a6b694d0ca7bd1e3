package main

import "github/chapool/chainswap/cmd"

func main() {
	cmd.Execute()
}
