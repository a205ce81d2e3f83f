package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompositeHealthChecker(t *testing.T) {
	c := NewCompositeHealthChecker("test")

	status := c.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)

	c.AddCheck("storage", func(context.Context) error { return nil })
	c.AddReadinessCheck("care_api", func(context.Context) error { return errors.New("circuit open") })

	status = c.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.False(t, status.Ready)
	assert.Equal(t, "Some checks failed: care_api", status.Message)
	assert.False(t, status.Checks["care_api"].Critical)

	c.AddCheck("storage", func(context.Context) error { return errors.New("down") })
	status = c.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "Some checks failed: care_api, storage", status.Message)

	c.RemoveCheck("storage")
	c.RemoveCheck("care_api")
	assert.True(t, c.Check(context.Background()).Ready)
}

func TestCompositeHealthChecker_Timeout(t *testing.T) {
	c := NewCompositeHealthChecker("test")
	c.SetTimeout(20 * time.Millisecond)
	c.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := c.Check(context.Background())
	assert.False(t, status.Healthy)
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	h := RequestSizeLimitMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"moodScore":90}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
