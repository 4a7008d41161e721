package sniper

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialFeed(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFeedSocketSendsSnapshotThenLiveInserts(t *testing.T) {
	feed := NewFeed(&fakeFeedStore{}, nil)
	feed.Apply(prospect("1", StatusNew, time.Now().UTC()))

	socket := NewFeedSocket(feed, nil)
	srv := httptest.NewServer(http.HandlerFunc(socket.Handle))
	defer srv.Close()

	conn := dialFeed(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot feedMessage
	require.NoError(t, conn.ReadJSON(&snapshot))
	require.Equal(t, "snapshot", snapshot.Type)
	require.Len(t, snapshot.Prospects, 1)
	require.NotNil(t, snapshot.Stats)

	feed.Apply(prospect("2", StatusNew, time.Now().UTC()))

	var live feedMessage
	require.NoError(t, conn.ReadJSON(&live))
	require.Equal(t, "prospect", live.Type)
	require.NotNil(t, live.Prospect)
	require.Equal(t, "2", live.Prospect.ID)
}

func TestFeedSocketClosesWhenFeedCloses(t *testing.T) {
	feed := NewFeed(&fakeFeedStore{}, nil)
	socket := NewFeedSocket(feed, nil)
	srv := httptest.NewServer(http.HandlerFunc(socket.Handle))
	defer srv.Close()

	conn := dialFeed(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot feedMessage
	require.NoError(t, conn.ReadJSON(&snapshot))

	feed.Close()

	var msg feedMessage
	err := conn.ReadJSON(&msg)
	require.Error(t, err, "server should close the socket when the feed is torn down")
}
