package model

import "time"

// OutboundMessage is the wire format published to the chat gateway.
// ChatID is an opaque destination identifier; the gateway owns the
// mapping to actual chat platform accounts.
type OutboundMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
