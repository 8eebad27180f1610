package chat_test

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/chatroom/internal/chat"
)

var quietLogger = log.New(io.Discard, "", 0)

func TestBroadcastAllReachesUnjoinedConnections(t *testing.T) {
	r := chat.NewRegistry()
	joined, pending := newFakeConn(), newFakeConn()
	r.AddConnection(joined)
	r.AddConnection(pending)
	require.NoError(t, r.SetDisplayName(joined.ID(), "alice"))

	b := chat.NewBroadcaster(r, quietLogger)
	delivery := b.BroadcastAll(chat.UserCountMessage{Count: 1})

	assert.Equal(t, chat.Delivery{Targets: 2, Delivered: 2}, delivery)
	assert.Equal(t, []string{`{"type":"userCount","count":1}`}, joined.raw())
	assert.Equal(t, joined.raw(), pending.raw(), "every recipient gets the identical payload")
}

func TestBroadcastJoinedSkipsUnjoinedConnections(t *testing.T) {
	r := chat.NewRegistry()
	joined, pending := newFakeConn(), newFakeConn()
	r.AddConnection(joined)
	r.AddConnection(pending)
	require.NoError(t, r.SetDisplayName(joined.ID(), "alice"))

	delivery := chat.NewBroadcaster(r, quietLogger).BroadcastJoined(chat.UserCountMessage{Count: 1})

	assert.Equal(t, 1, delivery.Delivered)
	assert.Len(t, joined.raw(), 1)
	assert.Empty(t, pending.raw())
}

func TestBroadcastSkipsConnectionsRemovedBeforeSnapshot(t *testing.T) {
	r := chat.NewRegistry()
	const k = 5
	conns := make([]*fakeConn, k)
	for i := range conns {
		conns[i] = newFakeConn()
		r.AddConnection(conns[i])
		require.NoError(t, r.SetDisplayName(conns[i].ID(), "user"))
	}
	r.RemoveConnection(conns[2].ID())

	delivery := chat.NewBroadcaster(r, quietLogger).BroadcastAll(chat.UserCountMessage{Count: k - 1})

	assert.Equal(t, chat.Delivery{Targets: k - 1, Delivered: k - 1}, delivery)
	for i, conn := range conns {
		if i == 2 {
			assert.Empty(t, conn.raw())
			continue
		}
		assert.Len(t, conn.raw(), 1)
	}
}

func TestBroadcastSwallowsSendFailures(t *testing.T) {
	r := chat.NewRegistry()
	healthy, gone := newFakeConn(), newFakeConn()
	r.AddConnection(healthy)
	r.AddConnection(gone)
	gone.failWith(chat.ErrConnectionClosed)

	b := chat.NewBroadcaster(r, quietLogger)
	delivery := b.BroadcastAll(chat.NewSystemMessage("notice", fixedTime))

	assert.Equal(t, chat.Delivery{Targets: 2, Delivered: 1, Failed: 1}, delivery)
	assert.Len(t, healthy.raw(), 1)
	assert.Zero(t, gone.closeCount(), "only overflowing recipients are closed")
}

func TestBroadcastClosesOverflowingConnections(t *testing.T) {
	r := chat.NewRegistry()
	slow := newFakeConn()
	r.AddConnection(slow)
	slow.failWith(errors.Join(errors.New("client 1.2.3.4"), chat.ErrSendQueueFull))

	chat.NewBroadcaster(r, quietLogger).BroadcastAll(chat.UserCountMessage{})

	assert.Equal(t, 1, slow.closeCount())
}

func TestBroadcastToEmptyRegistry(t *testing.T) {
	delivery := chat.NewBroadcaster(chat.NewRegistry(), nil).BroadcastAll(chat.UserCountMessage{})
	assert.Equal(t, chat.Delivery{}, delivery)
}
