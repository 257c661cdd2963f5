package main

import "github.com/aaronmcdaid/cpm/cmd/cpm/cmd"

func main() {
	cmd.Execute()
}
