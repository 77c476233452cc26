// Package server binds chat transports to the survey service.
package server

import "context"

// TextHandler processes one inbound text of a chat
type TextHandler interface {
	HandleText(ctx context.Context, chatID, text string) error
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
