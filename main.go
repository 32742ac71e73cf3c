package main

import "github.com/nfslabs/idmapd/cmd"

func main() {
	cmd.Execute()
}
