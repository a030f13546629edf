package main

import "github.com/aweris/symstash/cmd/symstash/cmd"

func main() {
	cmd.Execute()
}
