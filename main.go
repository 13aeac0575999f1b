package main

import "github.com/frahmantamala/fleet-management/cmd"

func main() {
	cmd.Execute()
}
