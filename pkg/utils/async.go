package utils

import (
	"context"
	"log"
	"runtime/debug"

	"ai-news-feed/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers panics so one misbehaving
// source cannot take down the whole run.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the run is still live, logging once when
// cancellation is observed.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context cancelled, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
