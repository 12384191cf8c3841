package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/webotp/internal/pkg/stacktrace"
)

// safeHandle runs handler and turns a panic into an error so one bad message
// does not take the subscription down.
func safeHandle(ctx context.Context, driver string, handler Handler, msg Message) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "topic", msg.Topic, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "topic", msg.Topic, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()

	return handler(ctx, msg)
}

func validate(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	return nil
}

func validateSubscribe(ctx context.Context, topic string, handler Handler) error {
	if err := validate(ctx, topic); err != nil {
		return err
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	return nil
}
