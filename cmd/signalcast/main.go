package main

import (
	"github.com/forthing17-ops/signalcast-sub000/cmd/cmd"
	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	cmd.Execute()
}
