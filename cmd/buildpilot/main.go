package main

import "github.com/entrepeneur4lyf/buildpilot/cmd/buildpilot/cmd"

func main() {
	cmd.Execute()
}
