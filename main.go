package main

import (
	"github.com/mothorchids/ScaffoQA/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
