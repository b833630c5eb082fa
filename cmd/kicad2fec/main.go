package main

import "github.com/OpenTraceLab/kicad2fec/cmd/kicad2fec/cmd"

func main() {
	cmd.Execute()
}
