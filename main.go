package main

import (
	"github.com/chainstash/chainstash/cmd"
)

func main() {
	cmd.Execute()
}
