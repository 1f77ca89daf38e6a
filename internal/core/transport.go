package core

import "context"

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, path string) error
	FetchDocument(ctx context.Context, fileID string) ([]byte, error)
}

// Attachment identifies a document sent by a user.
type Attachment struct {
	FileID   string
	FileName string
}

// Inbound is one chat event, already decoded from the transport.
type Inbound struct {
	ChatID   int64
	Text     string
	Command  string // without the leading slash; empty for plain messages
	Document *Attachment
}
