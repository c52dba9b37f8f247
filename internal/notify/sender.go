// Package notify delivers dispatcher notifications consumed by the worker.
package notify

import (
	"context"

	"github.com/Domenick1991/skydispatch/internal/kafka"
	"go.uber.org/zap"
)

// Sender writes notifications to the log. There is no external channel yet.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log.Named("notify")}
}

func (s *Sender) Send(ctx context.Context, event kafka.Event) error {
	if event.TargetID == "" {
		s.log.Debug("skip notification without recipient", zap.String("type", event.Type))
		return nil
	}
	s.log.Info("notify dispatcher",
		zap.String("type", event.Type),
		zap.String("to", event.TargetID),
		zap.String("from", event.ActorName),
		zap.String("flight_id", event.EntityID),
		zap.String("summary", event.Summary),
	)
	return nil
}
