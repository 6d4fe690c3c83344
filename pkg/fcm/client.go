package fcm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/oneroomhq/oneroom-backend/pkg/config"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
	"google.golang.org/api/option"
)

// Sender is the narrow messaging surface the dispatcher depends on.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Client wraps the Firebase Admin messaging client.
type Client struct {
	messaging *messaging.Client
	projectID string
}

var errProjectIDRequired = errors.New("gcp project id is required")

// NewClient boots the Firebase Admin SDK messaging client.
func NewClient(ctx context.Context, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}

	var opts []option.ClientOption
	if gcp.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	} else if gcp.ApplicationCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: gcp.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating messaging client: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "fcm client initialized")
	}

	return &Client{messaging: client, projectID: gcp.ProjectID}, nil
}

// Send submits one message (topic or single token addressing).
func (c *Client) Send(ctx context.Context, message *messaging.Message) (string, error) {
	if c == nil || c.messaging == nil {
		return "", errors.New("fcm client not initialized")
	}
	return c.messaging.Send(ctx, message)
}

// SendEachForMulticast submits one multicast batch (at most 500 tokens).
func (c *Client) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	if c == nil || c.messaging == nil {
		return nil, errors.New("fcm client not initialized")
	}
	return c.messaging.SendEachForMulticast(ctx, message)
}
