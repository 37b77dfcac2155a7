package loopback

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestListener(t *testing.T) *Listener {
	t.Helper()
	l := NewListener("github", Config{
		Addr:            "127.0.0.1:0",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	})
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(func() { _ = l.Stop(context.Background()) })
	return l
}

func TestParseCallbackPayload(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		body    string
		want    Callback
		wantErr error
	}{
		{name: "fragment with token", body: "#access_token=tok123&token_type=bearer", want: Callback{AccessToken: "tok123"}},
		{name: "fragment without hash", body: "access_token=tok123", want: Callback{AccessToken: "tok123"}},
		{name: "code pair", body: "code=abc123", want: Callback{Code: "abc123"}},
		{name: "bare code", body: "abc123", want: Callback{Code: "abc123"}},
		{name: "empty body", body: "", wantErr: ErrEmptyPayload},
		{name: "whitespace body", body: "   ", wantErr: ErrEmptyPayload},
		{name: "bare hash", body: "#", wantErr: ErrEmptyPayload},
		{name: "no credential", body: "token_type=bearer&state=xyz", wantErr: ErrMalformedPayload},
		{name: "unparseable query", body: "a=%zz&code=x", wantErr: ErrMalformedPayload},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseCallbackPayload(tt.body)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListenerCodeDelivery(t *testing.T) {
	l := startTestListener(t)

	attempt, err := l.Begin()
	require.NoError(t, err)

	resp, err := http.Get(fmt.Sprintf("http://%s/auth?code=abc123", l.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cb, err := attempt.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", cb.Code)
	assert.Empty(t, cb.AccessToken)
}

func TestListenerFragmentDelivery(t *testing.T) {
	l := startTestListener(t)

	attempt, err := l.Begin()
	require.NoError(t, err)

	// GET /auth without a code serves the forwarding page
	resp, err := http.Get(fmt.Sprintf("http://%s/auth", l.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The page script then posts the fragment back
	resp, err = http.Post(fmt.Sprintf("http://%s/exchange", l.Addr()), "text/plain",
		strings.NewReader("#access_token=tok456&token_type=bearer"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cb, err := attempt.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok456", cb.AccessToken)
}

func TestListenerEmptyBodyDoesNotKillLoop(t *testing.T) {
	l := startTestListener(t)

	attempt, err := l.Begin()
	require.NoError(t, err)

	// Empty body is rejected with 400...
	resp, err := http.Post(fmt.Sprintf("http://%s/exchange", l.Addr()), "text/plain", strings.NewReader(""))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// ...and the loop keeps serving: a subsequent valid POST completes
	// the still-pending attempt.
	resp, err = http.Post(fmt.Sprintf("http://%s/exchange", l.Addr()), "text/plain", strings.NewReader("code=ok"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cb, err := attempt.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", cb.Code)
}

func TestListenerUnknownPath(t *testing.T) {
	l := startTestListener(t)

	resp, err := http.Get(fmt.Sprintf("http://%s/nope", l.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListenerSecondAttemptRejected(t *testing.T) {
	l := startTestListener(t)

	first, err := l.Begin()
	require.NoError(t, err)

	_, err = l.Begin()
	assert.ErrorIs(t, err, ErrAttemptPending)

	// Cancelling the first frees the slot
	first.Cancel()
	_, err = l.Begin()
	assert.NoError(t, err)
}

func TestListenerDropsCallbackWithoutAttempt(t *testing.T) {
	l := startTestListener(t)

	// No Begin: delivery is acknowledged and dropped
	resp, err := http.Post(fmt.Sprintf("http://%s/exchange", l.Addr()), "text/plain", strings.NewReader("code=late"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAttemptWaitCancelled(t *testing.T) {
	l := startTestListener(t)

	attempt, err := l.Begin()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = attempt.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The slot is free again after a cancelled wait
	_, err = l.Begin()
	assert.NoError(t, err)
}

func TestListenerStartTwice(t *testing.T) {
	l := startTestListener(t)
	assert.ErrorIs(t, l.Start(context.Background()), ErrAlreadyStarted)
}
