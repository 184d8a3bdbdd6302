package main

import (
	"github.com/Winify/webdriverio-mcp/cmd"
)

func main() {
	cmd.Execute()
}
