package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/ledgerhub/internal/httpx"
	"github.com/sudo-init-do/ledgerhub/internal/ledger"
	"github.com/sudo-init-do/ledgerhub/internal/ledger/memory"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
)

type noTokens struct{}

func (noTokens) Issue(string, bool) (string, error) { return "t", nil }

func setup(t *testing.T) (*echo.Echo, *ledger.Service, *Hub) {
	t.Helper()
	svc := ledger.NewService(ledger.Options{
		Store: memory.NewStore(), Tokens: noTokens{}, Logger: logging.Discard(), BcryptCost: bcrypt.MinCost,
	})
	hub := NewHub(logging.Discard())
	h := NewHandler(svc, hub, logging.Discard())

	e := httpx.New(logging.Discard())
	e.POST("/api/send-message", h.SendMessage)
	e.GET("/api/messages", h.ListMessages)
	e.GET("/api/messages/ws", h.FeedWS)
	return e, svc, hub
}

func post(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSendAndListMessages(t *testing.T) {
	e, svc, _ := setup(t)
	u, err := svc.Register(context.Background(), "a@x.com", "alice", "pw")
	require.NoError(t, err)

	rec := post(e, `{"userId":"`+u.ID+`","message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Message sent successfully."}`, rec.Body.String())
	require.Equal(t, http.StatusOK, post(e, `{"userId":"`+u.ID+`","message":"world"}`).Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/messages", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var feed []FeedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	require.Len(t, feed, 2)
	assert.Equal(t, "world", feed[0].Message)
	assert.Equal(t, "hello", feed[1].Message)
	assert.Equal(t, "alice", feed[0].Username)
	assert.NotContains(t, rec.Body.String(), "user_id")
}

func TestSendMessage_Errors(t *testing.T) {
	e, svc, _ := setup(t)
	u, err := svc.Register(context.Background(), "a@x.com", "alice", "pw")
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, post(e, `{"userId":"`+u.ID+`","message":"   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(e, `{"message":"hi"}`).Code)
	assert.Equal(t, http.StatusNotFound, post(e, `{"userId":"ghost","message":"hi"}`).Code)

	msgs, err := svc.ListMessages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestFeedWS_ReceivesNewMessages(t *testing.T) {
	e, svc, hub := setup(t)
	u, err := svc.Register(context.Background(), "a@x.com", "alice", "pw")
	require.NoError(t, err)

	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/messages/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var evt struct {
		Type string   `json:"type"`
		Data FeedItem `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, "ready", evt.Type)
	assert.Equal(t, 1, hub.Len())

	require.Equal(t, http.StatusOK, post(e, `{"userId":"`+u.ID+`","message":"live"}`).Code)

	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, "message_new", evt.Type)
	assert.Equal(t, "live", evt.Data.Message)
	assert.Equal(t, "alice", evt.Data.Username)

	hub.Close()
	assert.Equal(t, 0, hub.Len())
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub(logging.Discard())
	slow := &client{send: make(chan []byte, 1)}
	fast := &client{send: make(chan []byte, sendBuffer)}
	hub.attach(slow)
	hub.attach(fast)
	require.Equal(t, 2, hub.Len())

	done := make(chan struct{})
	go func() {
		hub.broadcast(wsEvent{Type: "message_new"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client queue")
	}

	assert.Equal(t, 1, hub.Len())
	_, open := <-slow.send
	assert.True(t, open, "queued ready event is still readable")
	_, open = <-slow.send
	assert.False(t, open, "slow client queue is closed")

	assert.Len(t, fast.send, 2)
}
