package dispatch

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

func testEvent() *domain.IncidentEvent {
	assigned := "alice"
	return &domain.IncidentEvent{
		Type: domain.EventIncidentCreated,
		Incident: domain.Incident{
			ID:             "inc-1",
			Title:          "database is down",
			RotationID:     "rot-1",
			AssignedUserID: &assigned,
		},
		OccurredAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDeliver_PostSignsBody(t *testing.T) {
	secret := "topsecret"
	event := testEvent()

	var gotBody []byte
	var gotSignature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotSignature = r.Header.Get("X-Signature")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	endpoint := &domain.WebhookEndpoint{
		Name:         "pager",
		URL:          srv.URL,
		Method:       http.MethodPost,
		SharedSecret: &secret,
		IsActive:     true,
	}

	d := NewDeliverer(5 * time.Second)
	require.NoError(t, d.Deliver(context.Background(), endpoint, event))

	var decoded domain.IncidentEvent
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	require.Equal(t, event.Type, decoded.Type)
	require.Equal(t, event.Incident.ID, decoded.Incident.ID)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	require.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)
}

func TestDeliver_GetUsesQueryParameters(t *testing.T) {
	event := testEvent()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		require.Equal(t, domain.EventIncidentCreated, q.Get("event"))
		require.Equal(t, "inc-1", q.Get("incident_id"))
		require.Equal(t, "alice", q.Get("assigned_user_id"))
	}))
	defer srv.Close()

	endpoint := &domain.WebhookEndpoint{
		Name:     "dashboard",
		URL:      srv.URL,
		Method:   http.MethodGet,
		IsActive: true,
	}

	d := NewDeliverer(5 * time.Second)
	require.NoError(t, d.Deliver(context.Background(), endpoint, event))
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	endpoint := &domain.WebhookEndpoint{
		Name:     "flaky",
		URL:      srv.URL,
		Method:   http.MethodPost,
		IsActive: true,
	}

	d := NewDeliverer(5 * time.Second)
	err := d.Deliver(context.Background(), endpoint, testEvent())
	require.ErrorIs(t, err, schedule.ErrDownstreamUnavailable)
}

func TestDeliver_UnsupportedMethod(t *testing.T) {
	endpoint := &domain.WebhookEndpoint{
		Name:   "weird",
		URL:    "http://localhost:1",
		Method: "PUT",
	}

	d := NewDeliverer(5 * time.Second)
	err := d.Deliver(context.Background(), endpoint, testEvent())
	require.Error(t, err)
	require.NotErrorIs(t, err, schedule.ErrDownstreamUnavailable)
}

func TestMatches(t *testing.T) {
	created := domain.EventIncidentCreated

	require.True(t, Matches(&domain.WebhookEndpoint{}, domain.EventIncidentCreated))
	require.True(t, Matches(&domain.WebhookEndpoint{EventFilter: &created}, domain.EventIncidentCreated))
	require.False(t, Matches(&domain.WebhookEndpoint{EventFilter: &created}, domain.EventIncidentResolved))
}
