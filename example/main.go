package main

import (
	"errors"
	"log"
	"log/slog"
	"time"

	outpost "github.com/outpost-telemetry/outpost-go"
)

func main() {
	config := outpost.DefaultConfig()
	config.ServiceName = "checkout"
	config.Endpoint = "localhost:8088"
	config.Insecure = true

	logger, err := outpost.NewLogger(config)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	// Shutdown blocks until every queued event has been flushed.
	defer logger.Shutdown()

	logger.Info("Order received",
		outpost.String("order.id", "ord_8812"),
		outpost.Int("items", 3),
	)
	logger.Warn("Inventory running low", outpost.String("sku", "sku_332"))
	logger.Error("Payment gateway unreachable", errors.New("connection refused"),
		outpost.Duration("timeout", 5*time.Second),
	)

	// The same engine can back log/slog for code that already uses it.
	structured := slog.New(outpost.NewSlogHandler(logger))
	structured.With("region", "eu-west-1").Info("Handler attached", "pid", 4242)

	logger.Info("Last message before exit")
}
