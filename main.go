package main

import "github.com/PolarWolf314/trove/cmd"

func main() {
	cmd.Execute()
}
