// Command consumer runs the schedule-change log consumer on its own, for
// deployments where the server is started with QUEUE_CONSUMER=false.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/schedule-builder/internal/config"
	"github.com/iliyamo/schedule-builder/internal/queue"
)

func main() {
	cfg := config.LoadQueueConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("consuming %s, writing to %s", cfg.Queue, cfg.LogDir)
	if err := queue.StartScheduleConsumer(ctx, cfg.URL, cfg.Queue, cfg.LogDir); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
