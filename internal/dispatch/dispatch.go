// Package dispatch delivers incident events to registered webhook
// endpoints. Deliveries are signed with the endpoint's shared secret so
// receivers can verify the payload came from us.
package dispatch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

type Deliverer struct {
	httpClient *http.Client
}

func NewDeliverer(timeout time.Duration) *Deliverer {
	return &Deliverer{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Matches reports whether an endpoint wants a given event type. A nil
// filter matches everything.
func Matches(endpoint *domain.WebhookEndpoint, eventType string) bool {
	return endpoint.EventFilter == nil || *endpoint.EventFilter == eventType
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Deliver sends one event to one endpoint. POST endpoints receive the
// event as a JSON body; GET endpoints receive it flattened into query
// parameters. The signature always covers the JSON encoding of the event.
func (d *Deliverer) Deliver(ctx context.Context, endpoint *domain.WebhookEndpoint, event *domain.IncidentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var req *http.Request

	switch endpoint.Method {
	case http.MethodGet:
		target, err := url.Parse(endpoint.URL)
		if err != nil {
			return err
		}
		q := target.Query()
		q.Set("event", event.Type)
		q.Set("incident_id", event.Incident.ID)
		q.Set("title", event.Incident.Title)
		q.Set("rotation_id", event.Incident.RotationID)
		if event.Incident.AssignedUserID != nil {
			q.Set("assigned_user_id", *event.Incident.AssignedUserID)
		}
		q.Set("occurred_at", event.OccurredAt.Format(time.RFC3339))
		target.RawQuery = q.Encode()

		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return err
		}
	case http.MethodPost:
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
	default:
		return fmt.Errorf("unsupported endpoint method %q", endpoint.Method)
	}

	if endpoint.SharedSecret != nil {
		req.Header.Set("X-Signature", sign(*endpoint.SharedSecret, payload))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", schedule.ErrDownstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: endpoint returned %d", schedule.ErrDownstreamUnavailable, resp.StatusCode)
	}

	return nil
}
