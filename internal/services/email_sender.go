package services

import "context"

// Message is a single outbound email. HTML is optional; senders fall back to
// Text when it is empty.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

func (m Message) htmlOrText() string {
	if m.HTML != "" {
		return m.HTML
	}
	return m.Text
}
