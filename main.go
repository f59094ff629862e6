package main

import "github.com/Norgate-AV/mpb/cmd"

func main() {
	cmd.Execute()
}
