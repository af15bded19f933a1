package main

import "campusbite/cmd"

func main() {
	cmd.Execute()
}
