package mailer

import "context"

// Sender delivers a campaign message through the sending user's own mail
// channel. Implementations must treat Send as the point of no return: once
// it succeeds the message is out and cannot be recalled.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound campaign email.
type Message struct {
	UserEmail  string // account whose channel sends the message
	To         string
	Subject    string
	HTMLBody   string
	Attachment *Attachment // optional
}

// Attachment is an optional file attached to the message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}
