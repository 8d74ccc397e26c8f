package notifier

import "context"

// Notifier delivers text messages to an operator channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NoopNotifier discards every message. Used when Telegram is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(context.Context, string) error { return nil }

func (NoopNotifier) SendWithRetry(context.Context, string, int) error { return nil }
