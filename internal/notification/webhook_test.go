package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSend(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var ev Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		received <- ev
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Send(context.Background(), NewEvent(EventClaimSurveyed, map[string]any{"claimId": 7}))
	require.NoError(t, err)

	ev := <-received
	assert.Equal(t, EventClaimSurveyed, ev.Type)
	assert.EqualValues(t, 7, ev.Data["claimId"])
}

func TestWebhookSendReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL).Send(context.Background(), NewEvent(EventClaimStatusChanged, nil))
	assert.ErrorContains(t, err, "502")
}

func TestNotifyIsAsyncAndSurvivesCanceledRequest(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		received <- ev.Type
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	New(srv.URL).Notify(ctx, NewEvent(EventRenewalStatusChanged, nil))
	cancel()

	select {
	case typ := <-received:
		assert.Equal(t, EventRenewalStatusChanged, typ)
	case <-time.After(3 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestNewWithoutURLIsNoop(t *testing.T) {
	_, ok := New("").(Noop)
	assert.True(t, ok)
}
