package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) models.AchievementEvent {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var e models.AchievementEvent
		require.NoError(t, json.Unmarshal(data, &e))
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return models.AchievementEvent{}
	}
}

func TestHubRoutesEventsByInstitute(t *testing.T) {
	hub := startHub(t)

	first := newClient(hub, nil, 1, 1, zerolog.Nop())
	second := newClient(hub, nil, 2, 2, zerolog.Nop())
	all := newClient(hub, nil, 3, AllInstitutes, zerolog.Nop())
	for _, c := range []*Client{first, second, all} {
		require.True(t, hub.Register(c))
	}
	require.Eventually(t, func() bool { return hub.ClientsCount(AllInstitutes) == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(models.AchievementEvent{Type: models.AchievementRecorded, InstituteID: 1, StudentID: 7, Level: models.LevelGold})

	e := receive(t, first)
	assert.Equal(t, int64(7), e.StudentID)
	assert.Equal(t, models.LevelGold, e.Level)
	assert.Equal(t, int64(7), receive(t, all).StudentID)
	assert.Empty(t, second.send)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := newClient(hub, nil, 1, 5, zerolog.Nop())
	require.True(t, hub.Register(c))
	require.Eventually(t, func() bool { return hub.ClientsCount(5) == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.ClientsCount(5) == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := startHub(t)
	slow := newClient(hub, nil, 1, 4, zerolog.Nop())
	require.True(t, hub.Register(slow))

	for i := 0; i <= sendBuffer; i++ {
		hub.Publish(models.AchievementEvent{InstituteID: 4, StudentID: int64(i)})
	}
	require.Eventually(t, func() bool { return hub.ClientsCount(4) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubStopsOnCancel(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := newClient(hub, nil, 1, 1, zerolog.Nop())
	require.True(t, hub.Register(c))
	cancel()
	<-stopped

	_, ok := <-c.send
	assert.False(t, ok)
	assert.False(t, hub.Register(newClient(hub, nil, 2, 1, zerolog.Nop())))
	hub.Unregister(c)
}

type stubInstitutes map[int64]bool

func (s stubInstitutes) GetInstitute(_ context.Context, id int64) (*models.Institute, error) {
	if !s[id] {
		return nil, apperrors.ErrInstituteNotFound
	}
	return &models.Institute{ID: id}, nil
}

func TestHandleConnectionStreamsEvents(t *testing.T) {
	hub := startHub(t)
	h := NewHandler(hub, stubInstitutes{1: true}, []string{"*"}, zerolog.Nop())

	r := gin.New()
	r.GET("/ws", h.HandleConnection)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?institute_id=1"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.ClientsCount(1) == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(models.AchievementEvent{Type: models.AchievementUpdated, InstituteID: 1, StudentID: 42, Year: 2026})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e models.AchievementEvent
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, models.AchievementUpdated, e.Type)
	assert.Equal(t, int64(42), e.StudentID)
	assert.Equal(t, 2026, e.Year)
}

func TestHandleConnectionRejectsBadInstitute(t *testing.T) {
	hub := startHub(t)
	h := NewHandler(hub, stubInstitutes{1: true}, []string{"*"}, zerolog.Nop())
	r := gin.New()
	r.GET("/ws", h.HandleConnection)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?institute_id=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?institute_id=9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:3000"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}
