package main

import "github.com/ManuelReschke/SmokeCounter/cmd/smokecounter/cmd"

func main() {
	cmd.Execute()
}
