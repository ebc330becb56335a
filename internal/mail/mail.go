// Package mail composes the session summary email and delivers it
// through SendGrid.
package mail

import "context"

// Attachment is one file carried by a Message. Inline attachments are
// referenced from the body by CID and do not count as regular
// attachments.
type Attachment struct {
	Filename string
	Content  []byte
	MIMEType string
	Inline   bool
	CID      string
}

// Message is a fully composed email, independent of the delivery API.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Sender delivers a composed message. Delivery failures are warnings
// at the call site; nothing retries.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
