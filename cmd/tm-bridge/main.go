package main

import "github.com/vextm/tm-bridge/cmd/tm-bridge/cmd"

func main() {
	cmd.Execute()
}
