package mq

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher drains the event channel into the log. It is wired in when no
// broker is configured, so the catalog services can always publish without
// checking whether messaging is enabled.
type LogPublisher struct {
	log *zap.Logger
	in  InputCh
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{
		log: logger,
		in:  make(chan Event, bufferSize),
	}
}

func (p *LogPublisher) PublisherWorker(ctx context.Context) {
	for {
		select {
		case e := <-p.in:
			p.log.Info("vault event",
				zap.String("action", e.Action),
				zap.String("owner_id", e.OwnerID),
				zap.String("file_id", e.Payload.ID.String()),
				zap.String("file_name", e.Payload.Name),
			)
		case <-ctx.Done():
			return
		}
	}
}

func (p *LogPublisher) GetInputChan() chan Event { return p.in }
