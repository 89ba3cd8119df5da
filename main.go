package main

import "github.com/takecopter/backend/cmd"

func main() {
	cmd.Execute()
}
