package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/G-Research/trafficmonitor/internal/common/context"
)

// CreateContextWithShutdown returns a context that is cancelled when SIGINT or SIGTERM is received, along
// with a function that stops listening for those signals and cancels the context.
func CreateContextWithShutdown() (*context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-c:
			ctx.Log.Warnf("Received %s, finishing early", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(c)
		cancel()
	}
}
