package main

import (
	"queryblast/cmd"
)

func main() {
	cmd.Execute()
}
