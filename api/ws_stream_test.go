package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/realtime"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streamMessage struct {
	Type string            `json:"type"`
	Data domain.AuditEntry `json:"data"`
}

func dialStream(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func readStream(t *testing.T, conn *websocket.Conn) streamMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg streamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func requireClosed(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			assert.ErrorAs(t, err, &closeErr, "socket should be closed by the server, got %v", err)
			return
		}
	}
}

func TestStream_AuditOnlyReachesAdmins(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	s.register("alice", "pulkovo")
	s.register("bob", "moscow_uudd")
	admin := s.login("admin", "0000", "")
	alice := s.login("alice", "1234", "pulkovo")

	adminConn, _, err := dialStream(t, srv, admin.Token)
	require.NoError(t, err)
	aliceConn, _, err := dialStream(t, srv, alice.Token)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	bob := s.login("bob", "1234", "moscow_uudd")
	require.Equal(t, http.StatusOK, s.do("POST", "/auth/logout", bob.Token, nil).Code)
	s.hub.SendTo(alice.UserID, realtime.MessageTypeTransferRequest, map[string]string{"flightId": "marker"})

	// entries queued before the sockets registered may arrive first
	var seen []string
	for len(seen) == 0 || seen[len(seen)-1] != "bob:logout" {
		msg := readStream(t, adminConn)
		require.Equal(t, realtime.MessageTypeAudit, msg.Type)
		seen = append(seen, msg.Data.ActorName+":"+msg.Data.ActionType)
	}
	assert.Contains(t, seen, "bob:login")

	// the marker is queued after both audit entries
	msg := readStream(t, aliceConn)
	assert.Equal(t, realtime.MessageTypeTransferRequest, msg.Type, "dispatchers never see the audit stream")
}

func TestStream_ClosedOnDispatcherDelete(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	s.register("alice", "pulkovo")
	admin := s.login("admin", "0000", "")
	alice := s.login("alice", "1234", "pulkovo")

	aliceConn, _, err := dialStream(t, srv, alice.Token)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	w := s.do("DELETE", "/dispatchers/"+alice.UserID, admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	requireClosed(t, aliceConn)
	assert.Equal(t, 0, s.hub.ClientCount())

	_, resp, err := dialStream(t, srv, alice.Token)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStream_ClosedOnLogout(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	admin := s.login("admin", "0000", "")
	adminConn, _, err := dialStream(t, srv, admin.Token)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, s.do("POST", "/auth/logout", admin.Token, nil).Code)

	requireClosed(t, adminConn)
	assert.Equal(t, 0, s.hub.ClientCount())
}
