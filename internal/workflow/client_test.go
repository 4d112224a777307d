package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/preset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCaptionSendsPreset(t *testing.T) {
	var got CaptionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/caption", r.URL.Path)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(CaptionResponse{Caption: "Fresh bread daily"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "s3cret")
	caption, err := c.GenerateCaption(context.Background(), CaptionRequest{
		CarouselID: uuid.New(),
		Preset:     preset.Preset{Name: "bakery", Tone: "warm"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Fresh bread daily", caption)
	assert.Equal(t, "warm", got.Preset.Tone)
}

func TestPostMapsFailuresToNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "instagram unavailable"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Publish(context.Background(), PublishRequest{CarouselID: uuid.New()})

	assert.ErrorIs(t, err, apperr.ErrNetwork)
	assert.Contains(t, err.Error(), "instagram unavailable")
}

func TestUnconfiguredClientFails(t *testing.T) {
	_, err := NewClient("", "").GenerateCaption(context.Background(), CaptionRequest{})
	assert.ErrorIs(t, err, apperr.ErrNetwork)
}
