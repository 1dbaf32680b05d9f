package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learnhub/models"
	"learnhub/services/realtime"
	"learnhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newGatewayServer(t *testing.T) (*httptest.Server, *realtime.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := realtime.NewHub()
	r := gin.New()
	r.GET("/ws/notifications", NewRealtimeHandler(hub).ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func wsURL(srv *httptest.Server, query string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"
	if query != "" {
		u += "?" + query
	}
	return u
}

func dialAuthenticated(t *testing.T, srv *httptest.Server, userID int64) *websocket.Conn {
	t.Helper()
	token, err := utils.GenerateToken(userID, "student", time.Hour)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "token="+token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestGatewayRejectsMissingToken(t *testing.T) {
	srv, _ := newGatewayServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.NoError(t, err, "the upgrade itself succeeds; rejection uses a close code")
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close frame, got %v", err)
	assert.Equal(t, closeUnauthorized, closeErr.Code)
}

func TestGatewayRejectsGarbageToken(t *testing.T) {
	srv, _ := newGatewayServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "token=not-a-jwt"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok)
	assert.Equal(t, closeUnauthorized, closeErr.Code)
}

func TestGatewaySendsWelcomeFrame(t *testing.T) {
	srv, _ := newGatewayServer(t)
	conn := dialAuthenticated(t, srv, 42)

	f := readFrame(t, conn)
	assert.Equal(t, "connected", f.Type)
	assert.Equal(t, int64(42), f.UserID)
	assert.Equal(t, "notifications:42", f.Channel)
}

func TestGatewayAnswersPing(t *testing.T) {
	srv, _ := newGatewayServer(t)
	conn := dialAuthenticated(t, srv, 42)
	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping", "timestamp": 123}))

	f := readFrame(t, conn)
	assert.Equal(t, "pong", f.Type)
}

func TestGatewayReportsMalformedFramesWithoutClosing(t *testing.T) {
	srv, hub := newGatewayServer(t)
	conn := dialAuthenticated(t, srv, 42)
	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Type)

	// The session survived and still receives deliveries.
	n := &models.Notification{
		ID:     primitive.NewObjectID(),
		UserID: 42,
		Kind:   models.KindSystemMessage,
		Title:  "Still here",
		Body:   "Connection survived the bad frame",
	}
	// Give the error frame path a beat before publishing.
	time.Sleep(50 * time.Millisecond)
	hub.Publish(42, n)

	f = readFrame(t, conn)
	assert.Equal(t, "notification", f.Type)
}

func TestGatewayDeliversHubNotifications(t *testing.T) {
	srv, hub := newGatewayServer(t)
	conn := dialAuthenticated(t, srv, 7)
	readFrame(t, conn) // welcome

	// Subscription happens during the handshake; wait until it is visible.
	time.Sleep(50 * time.Millisecond)

	n := &models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    7,
		Kind:      models.KindNewEnrollment,
		Title:     "New enrollment in Distributed Systems",
		Body:      "Alan Kay has enrolled in your course.",
		CreatedAt: time.Now().UTC(),
	}
	hub.Publish(7, n)

	f := readFrame(t, conn)
	require.Equal(t, "notification", f.Type)
	require.NotNil(t, f.Data)
	assert.Equal(t, n.ID, f.Data.ID)
	assert.Equal(t, n.Title, f.Data.Title)

	var raw map[string]json.RawMessage
	// The delivered payload uses the model's wire shape.
	b, err := json.Marshal(f.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Contains(t, raw, "kind")
	assert.Contains(t, raw, "created_at")
}

func TestGatewaySessionsAreIndependentPerUser(t *testing.T) {
	srv, hub := newGatewayServer(t)

	mine := dialAuthenticated(t, srv, 1)
	other := dialAuthenticated(t, srv, 2)
	readFrame(t, mine)
	readFrame(t, other)

	time.Sleep(50 * time.Millisecond)
	hub.Publish(1, &models.Notification{
		ID: primitive.NewObjectID(), UserID: 1,
		Kind: models.KindSystemMessage, Title: "t", Body: "b",
	})

	f := readFrame(t, mine)
	assert.Equal(t, "notification", f.Type)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var stray frame
	err := other.ReadJSON(&stray)
	assert.Error(t, err, "user 2 must not see user 1's notification")
}
