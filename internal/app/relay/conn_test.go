package relay

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fadechat/internal/pkg/logx"
)

// connPair upgrades one connection through a real server so the pump runs
// over an actual transport.
func connPair(t *testing.T) (*wsConn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverSide := make(chan *websocket.Conn, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- conn
	}))
	t.Cleanup(server.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })

	c := newWSConn(<-serverSide, logx.Logger().With().Logger())
	go c.writePump()
	return c, client
}

func TestCloseDeliversReasonDuringConcurrentWrites(t *testing.T) {
	c, client := connPair(t)

	// Writers keep the pump busy while the close races in.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.enqueue([]byte(`{"type":"user_left","nickname":"x"}`))
			}
		}()
	}

	c.close(websocket.CloseNormalClosure, ReasonReplaced)
	wg.Wait()

	if err := c.enqueue([]byte("late")); !errors.Is(err, errConnClosed) {
		t.Errorf("enqueue after close = %v, want %v", err, errConnClosed)
	}

	// The peer must see the close frame with its reason intact, whatever
	// data frames the pump got out first.
	client.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, _, err := client.ReadMessage()
		if err == nil {
			continue
		}

		var ce *websocket.CloseError
		if !errors.As(err, &ce) {
			t.Fatalf("read ended with %v, want a close frame", err)
		}
		if ce.Code != websocket.CloseNormalClosure || ce.Text != ReasonReplaced {
			t.Errorf("close frame = %d %q, want %d %q",
				ce.Code, ce.Text, websocket.CloseNormalClosure, ReasonReplaced)
		}
		return
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c, client := connPair(t)

	c.close(websocket.CloseNormalClosure, ReasonTooFrequent)
	c.close(websocket.CloseNormalClosure, "second call must not panic")

	client.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, _, err := client.ReadMessage()
		if err == nil {
			continue
		}

		var ce *websocket.CloseError
		if errors.As(err, &ce) && ce.Text != ReasonTooFrequent {
			t.Errorf("close reason = %q, want the first call's %q", ce.Text, ReasonTooFrequent)
		}
		return
	}
}
