package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline     = 5 * time.Second
	messageBufferSize = 16
)

// wsTransport adapts a gorilla connection to domain.Transport. Writes are
// serialized through a buffered channel and a single writer goroutine so the
// hub never blocks on a slow client: a full buffer drops the frame.
type wsTransport struct {
	connection  *websocket.Conn
	clock       clockwork.Clock
	sendChannel chan []byte
	doneChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func newWSTransport(connection *websocket.Conn, clock clockwork.Clock) *wsTransport {
	t := &wsTransport{
		connection:  connection,
		clock:       clock,
		sendChannel: make(chan []byte, messageBufferSize),
		doneChannel: make(chan struct{}),
	}
	t.wg.Add(1)
	go t.run()
	return t
}

func (t *wsTransport) run() {
	defer t.wg.Done()

	for {
		select {
		case msg := <-t.sendChannel:
			t.updateWriteDeadline()
			if err := t.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-t.doneChannel:
			return
		}
	}
}

// Send enqueues one frame. Best-effort: a full buffer or a closed transport
// drops the frame and reports an error.
func (t *wsTransport) Send(data []byte) error {
	select {
	case <-t.doneChannel:
		return fmt.Errorf("transport closed")
	default:
	}

	select {
	case t.sendChannel <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Close stops the writer goroutine, then sends a close frame with the given
// reason before tearing the connection down.
func (t *wsTransport) Close(reason string) {
	t.stopOnce.Do(func() {
		close(t.doneChannel)

		// The writer goroutine must exit before the close frame is written;
		// gorilla connections do not allow concurrent writers.
		t.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		t.updateWriteDeadline()
		_ = t.connection.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = t.connection.Close()
	})
}

func (t *wsTransport) updateWriteDeadline() {
	_ = t.connection.SetWriteDeadline(t.clock.Now().Add(writeDeadline))
}
