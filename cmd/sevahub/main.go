package main

import (
	"github.com/sevahub/relay/internal/cli"
	"github.com/sevahub/relay/internal/logging"
)

func main() {
	logging.Init()
	cli.Execute()
}
