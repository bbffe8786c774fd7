package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bz888/accbuddy/internal/api"
	"github.com/bz888/accbuddy/internal/conversation"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestCheckMapsPingResult(t *testing.T) {
	ok := new(MockPinger)
	ok.On("Health", mock.Anything).Return(nil).Once()
	assert.Equal(t, conversation.Connected, NewMonitor(ok).Check(context.Background()))
	ok.AssertExpectations(t)

	failing := new(MockPinger)
	failing.On("Health", mock.Anything).Return(errors.New("connection refused")).Once()
	assert.Equal(t, conversation.Error, NewMonitor(failing).Check(context.Background()))
	failing.AssertExpectations(t)
}

func TestCheckAgainstBackend(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   conversation.ConnectionStatus
	}{
		{"ok", http.StatusOK, conversation.Connected},
		{"accepted", http.StatusAccepted, conversation.Connected},
		{"not found", http.StatusNotFound, conversation.Error},
		{"server error", http.StatusInternalServerError, conversation.Error},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c, err := api.NewClient(api.Config{BaseURL: srv.URL})
			require.NoError(t, err)

			assert.Equal(t, tt.want, NewMonitor(c).Check(context.Background()))
		})
	}
}

func TestCheckTimeoutIsError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := api.NewClient(api.Config{
		BaseURL:     srv.URL,
		ProbeClient: &http.Client{Timeout: 20 * time.Millisecond},
	})
	require.NoError(t, err)

	assert.Equal(t, conversation.Error, NewMonitor(c).Check(context.Background()))
}

func TestCheckUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := api.NewClient(api.Config{BaseURL: url})
	require.NoError(t, err)

	assert.Equal(t, conversation.Error, NewMonitor(c).Check(context.Background()))
}
