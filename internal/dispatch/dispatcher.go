package dispatch

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/oneroomhq/oneroom-backend/internal/compose"
	"github.com/oneroomhq/oneroom-backend/pkg/db/models"
	"github.com/oneroomhq/oneroom-backend/pkg/fcm"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
	"github.com/oneroomhq/oneroom-backend/pkg/metrics"
)

// maxBatchTokens is the push platform's per-call multicast ceiling.
const maxBatchTokens = 500

const (
	modeTopic  = "topic"
	modeTokens = "tokens"
)

// TokenSource resolves user identifiers to their registered push tokens.
type TokenSource interface {
	TokensForUsers(ctx context.Context, userIDs []uuid.UUID) ([]string, error)
}

// LogStore records dispatch attempts.
type LogStore interface {
	Create(ctx context.Context, entry *models.NotificationLog) error
}

// DispatcherParams groups dependencies for the dispatcher.
type DispatcherParams struct {
	FCM              fcm.Sender
	Tokens           TokenSource
	Log              LogStore
	Logger           *logger.Logger
	Metrics          *metrics.DispatchMetrics
	AndroidChannelID string
	BroadcastTopic   string
}

// Dispatcher submits composed payloads to the push platform, batching token
// fan-out under the platform ceiling. Delivery is best effort; batch failures
// are logged and counted, never raised to the caller.
type Dispatcher struct {
	fcm            fcm.Sender
	tokens         TokenSource
	logStore       LogStore
	log            *logger.Logger
	metrics        *metrics.DispatchMetrics
	androidChannel string
	broadcastTopic string
}

// NewDispatcher builds a dispatcher.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.FCM == nil {
		return nil, errors.New("fcm sender is required")
	}
	if params.Tokens == nil {
		return nil, errors.New("token source is required")
	}
	if params.Log == nil {
		return nil, errors.New("log store is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.AndroidChannelID == "" {
		return nil, errors.New("android channel id is required")
	}
	if params.BroadcastTopic == "" {
		return nil, errors.New("broadcast topic is required")
	}
	return &Dispatcher{
		fcm:            params.FCM,
		tokens:         params.Tokens,
		logStore:       params.Log,
		log:            params.Logger,
		metrics:        params.Metrics,
		androidChannel: params.AndroidChannelID,
		broadcastTopic: params.BroadcastTopic,
	}, nil
}

// RoomTopic names the client-side topic every room member subscribes to.
func RoomTopic(roomID uuid.UUID) string {
	return fmt.Sprintf("room_%s", roomID)
}

// SendBroadcast publishes the payload to the app-wide topic.
func (d *Dispatcher) SendBroadcast(ctx context.Context, payload compose.Payload) error {
	return d.sendToTopic(ctx, d.broadcastTopic, nil, payload)
}

// SendToRoomTopic publishes the payload to one room's topic. Subscription is
// managed client-side; no recipient filtering happens here.
func (d *Dispatcher) SendToRoomTopic(ctx context.Context, roomID uuid.UUID, payload compose.Payload) error {
	return d.sendToTopic(ctx, RoomTopic(roomID), &roomID, payload)
}

// SendToUsers resolves the recipients' tokens and fans the payload out in
// batches of at most 500 tokens per call.
func (d *Dispatcher) SendToUsers(ctx context.Context, roomID *uuid.UUID, recipients []uuid.UUID, payload compose.Payload) error {
	if len(recipients) == 0 {
		return nil
	}
	tokens, err := d.tokens.TokensForUsers(ctx, recipients)
	if err != nil {
		return fmt.Errorf("resolving tokens: %w", err)
	}
	return d.SendToTokens(ctx, roomID, len(recipients), tokens, payload)
}

// SendToTokens fans the payload out to an explicit token sequence. One push
// platform call per non-empty batch; a failed batch does not block the rest.
func (d *Dispatcher) SendToTokens(ctx context.Context, roomID *uuid.UUID, recipients int, tokens []string, payload compose.Payload) error {
	if len(tokens) == 0 {
		d.log.Info(ctx, "no tokens to dispatch")
		return nil
	}

	var batchErrs error
	for _, batch := range partitionTokens(tokens, maxBatchTokens) {
		message := &messaging.MulticastMessage{
			Tokens:       batch,
			Notification: &messaging.Notification{Title: payload.Title, Body: payload.Body, ImageURL: payload.ImageURL},
			Data:         payload.Data,
			Android:      d.androidConfig(),
			APNS:         apnsConfig(),
		}
		d.metrics.ObserveBatchSize(string(payload.Category), len(batch))
		if _, err := d.fcm.SendEachForMulticast(ctx, message); err != nil {
			d.metrics.IncFailure(string(payload.Category), modeTokens)
			batchErrs = multierr.Append(batchErrs, err)
			continue
		}
		d.metrics.IncSent(string(payload.Category), modeTokens)
	}
	if batchErrs != nil {
		d.log.Error(ctx, "one or more token batches failed", batchErrs)
	}

	d.record(ctx, payload, roomID, modeTokens, recipients, len(tokens))
	return nil
}

func (d *Dispatcher) sendToTopic(ctx context.Context, topic string, roomID *uuid.UUID, payload compose.Payload) error {
	message := &messaging.Message{
		Topic:        topic,
		Notification: &messaging.Notification{Title: payload.Title, Body: payload.Body, ImageURL: payload.ImageURL},
		Data:         payload.Data,
		Android:      d.androidConfig(),
		APNS:         apnsConfig(),
	}
	if _, err := d.fcm.Send(ctx, message); err != nil {
		d.metrics.IncFailure(string(payload.Category), modeTopic)
		return fmt.Errorf("sending to topic %s: %w", topic, err)
	}
	d.metrics.IncSent(string(payload.Category), modeTopic)
	d.record(ctx, payload, roomID, "topic:"+topic, 0, 0)
	return nil
}

func (d *Dispatcher) record(ctx context.Context, payload compose.Payload, roomID *uuid.UUID, target string, recipients, tokens int) {
	entry := &models.NotificationLog{
		Category:   payload.Category,
		RoomID:     roomID,
		Target:     target,
		Title:      payload.Title,
		Body:       payload.Body,
		Recipients: recipients,
		Tokens:     tokens,
	}
	if err := d.logStore.Create(ctx, entry); err != nil {
		d.log.Error(ctx, "failed to record notification log", err)
	}
}

func (d *Dispatcher) androidConfig() *messaging.AndroidConfig {
	return &messaging.AndroidConfig{
		Priority:     "high",
		Notification: &messaging.AndroidNotification{ChannelID: d.androidChannel},
	}
}

func apnsConfig() *messaging.APNSConfig {
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{Sound: "default"},
		},
	}
}

func partitionTokens(tokens []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		batches = append(batches, tokens[start:end])
	}
	return batches
}
