package usecase

import (
	"context"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/service"
	"partmatch/pkg/logger"
)

// Recorder receives operational counters. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveMessage(messageType string)
	ObserveNotification(kind string)
	ObserveFailure(stage string)
	ObserveEscalation()
}

type nopRecorder struct{}

func (nopRecorder) ObserveMessage(string)      {}
func (nopRecorder) ObserveNotification(string) {}
func (nopRecorder) ObserveFailure(string)      {}
func (nopRecorder) ObserveEscalation()         {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// publishChange emits a change event; delivery failures never fail the caller.
func publishChange(ctx context.Context, publisher service.EventPublisher, table string, typ entity.ChangeType, record interface{}, keys map[string]string) {
	if publisher == nil {
		return
	}
	event, err := entity.NewChangeEvent(table, typ, record, keys)
	if err != nil {
		logger.BestEffort("encode change event", err, map[string]string{"table": table})
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.BestEffort("publish change event", err, map[string]string{"table": table})
	}
}
