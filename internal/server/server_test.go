package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomboybathwater/chaosBattleJack/internal/game"
	"github.com/tomboybathwater/chaosBattleJack/internal/protocol"
	"github.com/tomboybathwater/chaosBattleJack/internal/rules"
)

func newFeedFixture(t *testing.T) (*Server, *game.Table, *httptest.Server) {
	t.Helper()
	logger := log.New(io.Discard)
	table, err := game.NewTable(rules.Default(), 101, 102, logger)
	require.NoError(t, err)

	s := NewServer(":0", table, logger, nil)
	ts := httptest.NewServer(http.HandlerFunc(s.handleWS))
	t.Cleanup(ts.Close)
	return s, table, ts
}

func dialFeed(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg protocol.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestSpectatorReceivesSnapshotsOnConnect(t *testing.T) {
	s, _, ts := newFeedFixture(t)
	conn := dialFeed(t, ts)

	shoe := readMessage(t, conn)
	assert.Equal(t, protocol.TypeShoe, shoe.Type)
	assert.Equal(t, protocol.SchemaVersion, shoe.Version)
	// Card contents must never appear in the public snapshot.
	assert.NotContains(t, string(shoe.Data), "suit")

	meter := readMessage(t, conn)
	assert.Equal(t, protocol.TypeChaosMeter, meter.Type)

	assert.Eventually(t, func() bool { return s.SpectatorCount() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestSpectatorReceivesRoundEvents(t *testing.T) {
	_, table, ts := newFeedFixture(t)
	conn := dialFeed(t, ts)

	// Skip the connect snapshots.
	readMessage(t, conn)
	readMessage(t, conn)

	require.NoError(t, table.BeginRound([]int{10}))

	// The opening deal produces at least four card_dealt broadcasts.
	dealt := 0
	for i := 0; i < 10 && dealt < 4; i++ {
		msg := readMessage(t, conn)
		if msg.Type == protocol.TypeCardDealt {
			dealt++
		}
	}
	assert.Equal(t, 4, dealt)
}

func TestBroadcastDropsClosedSpectators(t *testing.T) {
	s, table, ts := newFeedFixture(t)
	conn := dialFeed(t, ts)
	readMessage(t, conn)
	readMessage(t, conn)
	require.NoError(t, conn.Close())

	// Each broadcast attempt flushes out dead connections.
	assert.Eventually(t, func() bool {
		table.EventBus().Publish(game.NewMeterUpdatedEvent(0, 0))
		return s.SpectatorCount() == 0
	}, 5*time.Second, 50*time.Millisecond)
}
