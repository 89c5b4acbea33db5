package main

import (
	"github.com/spf13/cobra"
)

func main() {
	command := newHexioCommand()
	cobra.CheckErr(command.Execute())
}
