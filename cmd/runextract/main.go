package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/expensio/expense-docai/internal/extract"
)

// runextract runs the extraction pipeline over a saved document-AI response
// body and prints the outcome, without touching a database or the network.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <response-json-file>")
		os.Exit(2)
	}

	body, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("read response file", "path", os.Args[1], "error", err)
		os.Exit(1)
	}

	start := time.Now()
	outcome := extract.NewPipeline(logger).Run(string(body))
	dur := time.Since(start)

	if !outcome.Completed() {
		logger.Error("extraction failed",
			"reason", outcome.Reason,
			"message", outcome.Message,
			"duration_ms", dur.Milliseconds(),
		)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome.Payload); err != nil {
		logger.Error("encode payload", "error", err)
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"merchant", outcome.Payload.MerchantName,
		"line_items", len(outcome.Payload.LineItems),
		"duration_ms", dur.Milliseconds(),
	)
}
