// Package calendar pushes periods to an external calendar service so the
// on-call schedule shows up in everyone's calendars.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

type Client struct {
	syncURL    string
	httpClient *http.Client
}

func NewClient(syncURL string, timeout time.Duration) *Client {
	return &Client{
		syncURL:    syncURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a sync URL is configured. Syncing is optional;
// deployments without a calendar service simply skip it.
func (c *Client) Enabled() bool {
	return c.syncURL != ""
}

type syncEvent struct {
	PeriodID string    `json:"period_id"`
	Name     string    `json:"name"`
	StartUTC time.Time `json:"start_utc"`
	EndUTC   time.Time `json:"end_utc"`
	EventID  *string   `json:"event_id"`
}

type syncRequest struct {
	Events []syncEvent `json:"events"`
}

type syncResponse struct {
	Results []SyncResult `json:"results"`
}

type SyncResult struct {
	PeriodID string `json:"period_id"`
	EventID  string `json:"event_id"`
}

// Sync upserts one calendar event per period and returns the event ID the
// calendar service assigned to each. Existing event IDs are sent along so
// the service updates in place instead of duplicating.
func (c *Client) Sync(ctx context.Context, periods []*domain.Period) ([]SyncResult, error) {
	events := make([]syncEvent, 0, len(periods))
	for _, p := range periods {
		events = append(events, syncEvent{
			PeriodID: p.ID,
			Name:     p.Name,
			StartUTC: p.StartUTC,
			EndUTC:   p.EndUTC,
			EventID:  p.CalendarEventID,
		})
	}

	body, err := json.Marshal(syncRequest{Events: events})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.syncURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schedule.ErrDownstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: calendar service returned %d", schedule.ErrDownstreamUnavailable, resp.StatusCode)
	}

	var parsed syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", schedule.ErrDownstreamUnavailable, err)
	}

	return parsed.Results, nil
}
