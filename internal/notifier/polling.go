package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

// Update is one text message pulled from getUpdates.
type Update struct {
	ID   int64
	Text string
}

// parseUpdates extracts text messages from a getUpdates response body.
func parseUpdates(body []byte) ([]Update, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON in getUpdates response")
	}
	res := gjson.ParseBytes(body)
	if !res.Get("ok").Bool() {
		return nil, fmt.Errorf("getUpdates not ok: %s", res.Get("description").String())
	}
	var updates []Update
	res.Get("result").ForEach(func(_, u gjson.Result) bool {
		updates = append(updates, Update{
			ID:   u.Get("update_id").Int(),
			Text: strings.TrimSpace(u.Get("message.text").String()),
		})
		return true
	})
	return updates, nil
}

// poll fetches pending updates starting at offset.
func (t *TelegramNotifier) poll(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	apiURL := fmt.Sprintf("%s?offset=%d&timeout=%d", t.endpoint("getUpdates"), offset, timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create polling request: %w", err)
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polling request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read polling response: %w", err)
	}
	return parseUpdates(body)
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	var offset int64
	for {
		if ctx.Err() != nil {
			t.log.Info().Msg("telegram polling stopped")
			return
		}

		updates, err := t.poll(ctx, offset, 30)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			t.log.Warn().Err(err).Msg("polling failed")
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			offset = u.ID + 1
			if u.Text == "" {
				continue
			}
			t.log.Info().Str("command", u.Text).Msg("received command")
			if reply := handler(ctx, u.Text); reply != "" {
				if err := t.Send(ctx, reply); err != nil {
					t.log.Error().Err(err).Msg("send reply")
				}
			}
		}
	}
}
