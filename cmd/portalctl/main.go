package main

import "clubportal/cmd/portalctl/cmd"

func main() {
	cmd.Execute()
}
