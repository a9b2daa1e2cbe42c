package reconciliation

import (
	"context"
	"encoding/json"
	"fmt"

	pubsubv2 "cloud.google.com/go/pubsub/v2"
	"go.uber.org/multierr"

	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

// Notifier fans newly created alerts out to downstream consumers.
type Notifier interface {
	PublishAlerts(ctx context.Context, alerts []models.ReconciliationAlert) error
}

// AlertEvent is the published envelope for a created alert.
type AlertEvent struct {
	Event string                      `json:"event"`
	Alert *models.ReconciliationAlert `json:"alert"`
}

const alertCreatedEvent = "reconciliation.alert.created"

type pubsubNotifier struct {
	publisher *pubsubv2.Publisher
	logg      *logger.Logger
}

// NewPubSubNotifier publishes alert-created events to the configured topic.
func NewPubSubNotifier(publisher *pubsubv2.Publisher, logg *logger.Logger) (Notifier, error) {
	if publisher == nil {
		return nil, fmt.Errorf("alerts publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &pubsubNotifier{publisher: publisher, logg: logg}, nil
}

func (n *pubsubNotifier) PublishAlerts(ctx context.Context, alerts []models.ReconciliationAlert) error {
	var errs error
	for i := range alerts {
		alert := alerts[i]
		payload, err := json.Marshal(AlertEvent{Event: alertCreatedEvent, Alert: &alert})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("marshal alert %s: %w", alert.ID, err))
			continue
		}

		result := n.publisher.Publish(ctx, &pubsubv2.Message{
			Data: payload,
			Attributes: map[string]string{
				"event": alertCreatedEvent,
				"type":  alert.Type.String(),
			},
		})
		if _, err := result.Get(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("publish alert %s: %w", alert.ID, err))
		}
	}

	if errs != nil {
		lctx := n.logg.WithField(ctx, "failures", len(multierr.Errors(errs)))
		n.logg.Warn(lctx, "failed to publish some alert events")
	}
	return errs
}
