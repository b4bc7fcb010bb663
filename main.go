package main

import "dash-sync/cmd"

func main() {
	cmd.Execute()
}
