package opc

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"volume-mapper/internal/domain/entity"
)

func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func hasEvent(events []entity.LinkEvent, kind entity.LinkEventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestClient_WriteWhileDisconnectedDropsWithEvent(t *testing.T) {
	c := NewClient(Options{Addr: closedAddr(t)}, zaptest.NewLogger(t).Sugar())
	defer c.Close()

	start := time.Now()
	c.Write([]byte{0, 0, 0, 3, 1, 2, 3})
	require.Less(t, time.Since(start), 100*time.Millisecond)

	events := c.DrainEvents()
	require.Len(t, events, 1)
	require.Equal(t, entity.LinkError, events[0].Kind)
	require.True(t, errors.Is(events[0].Err, ErrNotConnected))
	require.Empty(t, c.DrainEvents())
}

func TestClient_ConnectsAndSendsPackets(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 2*(entity.OPCHeaderSize+48))
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		received <- buf
	}()

	c := NewClient(Options{Addr: l.Addr().String()}, zaptest.NewLogger(t).Sugar())
	defer c.Close()

	c.Update()
	require.Eventually(t, c.Connected, 2*time.Second, 5*time.Millisecond)
	require.True(t, hasEvent(c.DrainEvents(), entity.LinkConnected))

	p := entity.NewPixelPacket()
	p.Reset(entity.OPCBroadcastChannel, 16)
	p.SetPixel(3, entity.RGB{R: 10, G: 20, B: 30})
	c.Write(p.Bytes())
	c.Write(p.Bytes())
	// Буфер пакета можно сразу переиспользовать.
	p.Reset(entity.OPCBroadcastChannel, 16)

	select {
	case buf := <-received:
		for _, frame := range [][]byte{buf[:52], buf[52:]} {
			h, err := entity.DecodeOPCHeader(frame)
			require.NoError(t, err)
			require.Equal(t, uint8(entity.OPCSetPixelColors), h.Command)
			require.Equal(t, uint16(48), h.Length)
			require.Equal(t, []byte{10, 20, 30}, frame[4+9:4+12])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("packets were not received")
	}
}

func TestClient_RetriesWithBackoff(t *testing.T) {
	mock := clock.NewMock()
	c := NewClient(Options{
		Addr:       closedAddr(t),
		MinBackoff: 250 * time.Millisecond,
		MaxBackoff: time.Second,
		Clock:      mock,
	}, zaptest.NewLogger(t).Sugar())
	defer c.Close()

	var events []entity.LinkEvent
	c.Update()
	require.Eventually(t, func() bool {
		events = append(events, c.DrainEvents()...)
		return hasEvent(events, entity.LinkError)
	}, 2*time.Second, 5*time.Millisecond)
	require.False(t, c.Connected())

	// Пока пауза не истекла, новых попыток нет.
	c.Update()
	require.Never(t, func() bool { return len(c.DrainEvents()) > 0 }, 100*time.Millisecond, 10*time.Millisecond)

	mock.Add(250 * time.Millisecond)
	c.Update()
	require.Eventually(t, func() bool {
		return hasEvent(c.DrainEvents(), entity.LinkError)
	}, 2*time.Second, 5*time.Millisecond)

	c.mu.Lock()
	backoff := c.backoff
	c.mu.Unlock()
	require.Equal(t, 500*time.Millisecond, backoff)
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan net.Conn, 4)
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			accepted <- conn
		}
	}()

	c := NewClient(Options{Addr: l.Addr().String(), MinBackoff: 10 * time.Millisecond}, zaptest.NewLogger(t).Sugar())
	defer c.Close()

	c.Update()
	require.Eventually(t, c.Connected, 2*time.Second, 5*time.Millisecond)
	(<-accepted).Close()

	var events []entity.LinkEvent
	require.Eventually(t, func() bool {
		c.Write([]byte{0, 0, 0, 3, 1, 2, 3})
		events = append(events, c.DrainEvents()...)
		return hasEvent(events, entity.LinkDisconnected)
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		c.Update()
		return c.Connected()
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case conn := <-accepted:
		conn.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("client did not reconnect")
	}
}

func TestClient_CloseTwice(t *testing.T) {
	c := NewClient(Options{Addr: closedAddr(t)}, nil)
	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Close(), ErrClosed)

	c.Update()
	require.False(t, c.Connected())
}
