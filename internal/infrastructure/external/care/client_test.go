package care

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/wellness-hub/internal/domain/appointment"
	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/pkg/circuitbreaker"
	"github.com/campuscare/wellness-hub/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig(srv.URL + "/")
	cfg.Timeout = 2 * time.Second
	cfg.Token = "tok"
	return NewClient(cfg, logger.Nop())
}

func TestFetchAppointments_RequestAndDecode(t *testing.T) {
	var gotPath, gotAuth, gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"_id":"a1","date":"2025-04-02","time":"10:00","status":"Booked","counsellor":"Dr. Reyes"}]`))
	})

	ctx := logger.ContextWithRequestID(context.Background(), "req-1")
	list, err := c.FetchAppointments(ctx, "stu 42")
	require.NoError(t, err)

	assert.Equal(t, "/appointments/student/stu 42", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "req-1", gotReqID)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)
	assert.Equal(t, appointment.StatusBooked, list[0].Status)
}

func TestFetchAppointments_NonArrayIsShapeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"appointments":[]}`))
	})

	list, err := c.FetchAppointments(context.Background(), "s1")
	assert.Nil(t, list)
	assert.ErrorIs(t, err, shared.ErrInvalidResponseShape)
}

func TestFetchAppointments_EmptyArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(" []"))
	})

	list, err := c.FetchAppointments(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestFetchAppointments_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Student not found"}`))
	})

	_, err := c.FetchAppointments(context.Background(), "s1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Student not found", apiErr.UserMessage())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, circuitbreaker.StateClosed, c.BreakerState())
}

func TestFetchAppointments_ServerErrorRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	list, err := c.FetchAppointments(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchAppointments_SlowServiceIsTimeout(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	cfg := DefaultClientConfig(srv.URL + "/")
	cfg.Timeout = 50 * time.Millisecond
	cfg.MaxAttempts = 2
	c := NewClient(cfg, logger.Nop())

	list, err := c.FetchAppointments(context.Background(), "s1")
	assert.Nil(t, list)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrTimeout)
	assert.True(t, shared.IsRetryable(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchAssessments_PathAndLimit(t *testing.T) {
	var gotPath, gotLimit string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`{"tests":[{"_id":"t1","testType":"PHQ-9","score":9,"severity":"Low"}]}`))
	})

	results, err := c.FetchAssessments(context.Background(), "s1", 0)
	require.NoError(t, err)

	assert.Equal(t, "/tests/results/s1", gotPath)
	assert.Equal(t, "3", gotLimit)
	require.Len(t, results, 1)
	assert.Equal(t, "PHQ-9", results[0].TestType)
}

func TestFetchAssessments_MissingTests(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	results, err := c.FetchAssessments(context.Background(), "s1", 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestAPIError_Kinds(t *testing.T) {
	rl := &APIError{StatusCode: http.StatusTooManyRequests}
	assert.True(t, rl.Temporary())
	assert.ErrorIs(t, rl, shared.ErrRateLimited)
	assert.ErrorIs(t, rl, shared.ErrExternalService)

	bad := &APIError{StatusCode: http.StatusBadRequest, Message: "nope"}
	assert.False(t, bad.Temporary())
	assert.NotErrorIs(t, bad, shared.ErrServiceUnavailable)
	assert.Equal(t, "care api: status 400: nope", bad.Error())
}
