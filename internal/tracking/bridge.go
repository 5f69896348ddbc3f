package tracking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quaywood/handviewer/internal/logger"
)

// positionMsg is the wire form of a hand estimate. The tracker sends one as
// a text message per processed camera frame; annotated frames arrive as
// binary JPEG messages on the same connection.
type positionMsg struct {
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	Z    float32 `json:"z"`
	Hand bool    `json:"hand"`
}

// Bridge is a Source backed by a websocket connection to the tracker
// process. Reads happen on an internal goroutine because websocket read
// errors are permanent; Poll takes a snapshot of the latest state so the
// frame loop itself never blocks on the network.
type Bridge struct {
	conn *websocket.Conn
	done chan struct{}

	mu         sync.Mutex
	latestPos  Position
	latestHand bool
	latest     *image.RGBA
	readErr    error

	// Frame-local snapshot, touched only by the frame thread.
	pos       Position
	hand      bool
	frame     *image.RGBA
	connected bool
	closed    bool
}

// Dial connects to the tracker at url (ws://host:port/track). A failed dial
// is the camera-unavailable startup path and is returned to the caller.
func Dial(url string, timeout time.Duration) (*Bridge, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to tracking bridge %s: %w", url, err)
	}

	b := &Bridge{
		conn:      conn,
		done:      make(chan struct{}),
		latestPos: Center(),
		pos:       Center(),
		connected: true,
	}
	go b.readLoop()

	logger.Info("tracking bridge connected", zap.String("url", url))
	return b, nil
}

func (b *Bridge) readLoop() {
	defer close(b.done)
	for {
		msgType, data, err := b.conn.ReadMessage()
		if err != nil {
			b.mu.Lock()
			b.readErr = err
			b.mu.Unlock()
			return
		}

		switch msgType {
		case websocket.TextMessage:
			var msg positionMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				logger.Warn("bad position message from bridge", zap.Error(err))
				continue
			}
			b.mu.Lock()
			b.latestHand = msg.Hand
			if msg.Hand {
				b.latestPos = Position{X: msg.X, Y: msg.Y, Z: msg.Z}
			}
			b.mu.Unlock()

		case websocket.BinaryMessage:
			img, err := jpeg.Decode(bytes.NewReader(data))
			if err != nil {
				logger.Warn("bad frame from bridge", zap.Error(err))
				continue
			}
			rgba := toRGBA(img)
			b.mu.Lock()
			b.latest = rgba
			b.mu.Unlock()
		}
	}
}

// Poll snapshots the latest tracker state for this frame. After a read
// failure the bridge degrades: no hand, no frames, no termination.
func (b *Bridge) Poll() {
	if !b.connected {
		return
	}

	b.mu.Lock()
	err := b.readErr
	b.pos = b.latestPos
	b.hand = b.latestHand
	b.frame = b.latest
	b.mu.Unlock()

	if err != nil {
		logger.Warn("tracking bridge lost", zap.Error(err))
		b.connected = false
		b.hand = false
		b.frame = nil
	}
}

// Position returns the last snapshotted hand position and availability.
func (b *Bridge) Position() (Position, bool) {
	return b.pos, b.hand && b.connected
}

// Frame returns the last snapshotted annotated frame, nil when the bridge
// is lost or no frame has arrived yet.
func (b *Bridge) Frame() *image.RGBA {
	if !b.connected {
		return nil
	}
	return b.frame
}

// Close shuts the connection down exactly once and waits for the reader to
// stop.
func (b *Bridge) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.connected = false
	err := b.conn.Close()
	<-b.done
	return err
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}
