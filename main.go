package main

import "github.com/gitbbrid/yiiredis/cmd"

func main() {
	cmd.Execute()
}
