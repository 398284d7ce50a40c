package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

func syncPeriods() []*domain.Period {
	existing := "evt-42"
	return []*domain.Period{
		{
			ID:       "p-1",
			Name:     "On-Call 2024-01-01",
			StartUTC: time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC),
			EndUTC:   time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
		},
		{
			ID:              "p-2",
			Name:            "On-Call 2024-01-08",
			StartUTC:        time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC),
			EndUTC:          time.Date(2024, 1, 8, 23, 0, 0, 0, time.UTC),
			CalendarEventID: &existing,
		},
	}
}

func TestSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req syncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Events, 2)
		require.Nil(t, req.Events[0].EventID)
		require.NotNil(t, req.Events[1].EventID)
		require.Equal(t, "evt-42", *req.Events[1].EventID)

		_ = json.NewEncoder(w).Encode(syncResponse{Results: []SyncResult{
			{PeriodID: "p-1", EventID: "evt-100"},
			{PeriodID: "p-2", EventID: "evt-42"},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	require.True(t, c.Enabled())

	results, err := c.Sync(context.Background(), syncPeriods())
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "evt-100", results[0].EventID)
}

func TestSync_ServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Sync(context.Background(), syncPeriods())
	require.ErrorIs(t, err, schedule.ErrDownstreamUnavailable)
}

func TestEnabled(t *testing.T) {
	require.False(t, NewClient("", time.Second).Enabled())
}
