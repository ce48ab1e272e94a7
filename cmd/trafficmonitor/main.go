package main

import (
	"os"

	"github.com/G-Research/trafficmonitor/cmd/trafficmonitor/cmd"
	"github.com/G-Research/trafficmonitor/internal/common/app"
)

func main() {
	ctx, stop := app.CreateContextWithShutdown()
	err := cmd.RootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
