package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
	"github.com/mariaquintana/insurecrm-backend/pkg/outbox"
	"github.com/mariaquintana/insurecrm-backend/pkg/outbox/idempotency"
	"github.com/mariaquintana/insurecrm-backend/pkg/outbox/payloads"
)

const policyNotificationConsumer = "policy-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches domain events and turns notification requests and policy
// escalations into notification rows.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a policy notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	switch eventType {
	case string(enums.EventNotificationRequested), string(enums.EventPolicyEscalated):
	default:
		c.logg.Info(logCtx, "skipping event without notification handling")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, policyNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, policyNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType string, envelope outbox.PayloadEnvelope, logCtx context.Context) error {
	switch eventType {
	case string(enums.EventNotificationRequested):
		var payload payloads.NotificationRequestedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("parse notification request: %w", err)
		}
		return c.createRequested(ctx, payload, logCtx)
	case string(enums.EventPolicyEscalated):
		var payload payloads.PolicyEscalatedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("parse escalation: %w", err)
		}
		return c.createEscalation(ctx, envelope, payload, logCtx)
	}
	return nil
}

func (c *Consumer) createRequested(ctx context.Context, payload payloads.NotificationRequestedEvent, logCtx context.Context) error {
	if payload.RecipientID == uuid.Nil {
		return fmt.Errorf("recipient id missing")
	}
	if !payload.RecipientType.IsValid() {
		return fmt.Errorf("recipient type %q unknown", payload.RecipientType)
	}
	notificationType := payload.Type
	if !notificationType.IsValid() {
		notificationType = enums.NotificationTypeSystemAnnouncement
	}
	notification := &models.Notification{
		RecipientType: payload.RecipientType,
		RecipientID:   payload.RecipientID,
		Type:          notificationType,
		Title:         "Notification",
		Message:       fmt.Sprintf("You have a new %s notification.", notificationType),
		PolicyID:      payload.PolicyID,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "recipient notified")
	return nil
}

// createEscalation notifies the actor recorded on the event envelope; an
// escalation without an actor has nobody to alert and is dropped.
func (c *Consumer) createEscalation(ctx context.Context, envelope outbox.PayloadEnvelope, payload payloads.PolicyEscalatedEvent, logCtx context.Context) error {
	if envelope.Actor == nil || envelope.Actor.ActorID == nil {
		c.logg.Info(logCtx, "escalation carries no actor; skipping notification")
		return nil
	}
	notification := &models.Notification{
		RecipientType: envelope.Actor.Type,
		RecipientID:   *envelope.Actor.ActorID,
		Type:          enums.NotificationTypePolicyEscalated,
		Title:         "Policy escalated",
		Message: fmt.Sprintf("Policy %s has been in underwriting for %d days and was escalated.",
			payload.PolicyNumber, payload.PendingDays),
		PolicyID: &payload.PolicyID,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "escalation notification created")
	return nil
}
