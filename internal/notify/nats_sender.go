package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/t77yq/campus-bot/internal/model"
)

// OutboundSubject is where the chat gateway picks up messages to relay
// to the platform.
const OutboundSubject = "bot.outbound.send"

// NATSSender publishes outbound messages to the gateway subject. Core
// NATS is deliberate here: delivery is fire-and-forget with no ack
// tracking, matching the broadcast contract.
type NATSSender struct {
	logger *zap.Logger
	nc     *nats.Conn
}

// NewNATSSender creates a sender over an established NATS connection.
func NewNATSSender(nc *nats.Conn, logger *zap.Logger) *NATSSender {
	return &NATSSender{
		logger: logger.Named("notify"),
		nc:     nc,
	}
}

// Send publishes one message for one destination.
func (s *NATSSender) Send(ctx context.Context, chatID, text string) error {
	msg := model.OutboundMessage{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		Text:      text,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := s.nc.Publish(OutboundSubject, data); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	s.logger.Debug("Message published",
		zap.String("message_id", msg.ID),
		zap.String("chat_id", chatID),
		zap.Int("length", len(text)))

	return nil
}
