package notify

import "context"

// EmailMessage is a single outbound email.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg EmailMessage) error
}
