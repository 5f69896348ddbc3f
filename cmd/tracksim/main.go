// Package main implements tracksim, a synthetic tracking bridge for running
// the viewer without a camera. It serves the same websocket protocol a real
// tracker would: text JSON position messages plus binary JPEG preview frames,
// with periodic hand-lost intervals to exercise the hold-last-pose behavior.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quaywood/handviewer/internal/logger"
)

var (
	flagAddr   = flag.String("addr", ":9916", "Listen address")
	flagFPS    = flag.Int("fps", 30, "Messages per second")
	flagWidth  = flag.Int("width", 640, "Preview frame width")
	flagHeight = flag.Int("height", 480, "Preview frame height")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
)

type positionMsg struct {
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	Z    float32 `json:"z"`
	Hand bool    `json:"hand"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func main() {
	flag.Parse()

	level := "info"
	if *flagDebug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	http.HandleFunc("/track", serveTrack)

	logger.Info("tracksim listening",
		zap.String("addr", *flagAddr),
		zap.Int("fps", *flagFPS),
	)
	if err := http.ListenAndServe(*flagAddr, nil); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func serveTrack(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	logger.Info("viewer connected", zap.String("remote", r.RemoteAddr))

	// Discard incoming messages so control frames keep being processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	interval := time.Second / time.Duration(*flagFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for range ticker.C {
		t := time.Since(start).Seconds()
		msg := simulate(t)

		data, err := json.Marshal(msg)
		if err != nil {
			logger.Error("marshaling position", zap.Error(err))
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Info("viewer disconnected", zap.Error(err))
			return
		}

		frame := renderFrame(t, msg)
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			logger.Info("viewer disconnected", zap.Error(err))
			return
		}
	}
}

// simulate produces a slow orbit of the palm around frame center, pushing in
// and out in depth. Every eighth second-block the hand drops out for two
// seconds, mimicking the palm leaving the camera's field of view.
func simulate(t float64) positionMsg {
	if int(t)%8 >= 6 {
		return positionMsg{Hand: false}
	}
	return positionMsg{
		X:    float32(0.5 + 0.35*math.Cos(t*0.7)),
		Y:    float32(0.5 + 0.35*math.Sin(t*0.9)),
		Z:    float32(0.15 + 0.1*math.Sin(t*0.4)),
		Hand: true,
	}
}

// renderFrame draws a camera-style test pattern: a moving gradient with a
// marker square at the simulated palm position, encoded as JPEG like a real
// annotated preview would be.
func renderFrame(t float64, msg positionMsg) []byte {
	w, h := *flagWidth, *flagHeight
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	phase := uint8(int(t*40) % 256)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: phase,
				A: 255,
			})
		}
	}

	if msg.Hand {
		drawMarker(img, int(msg.X*float32(w)), int(msg.Y*float32(h)))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 70}); err != nil {
		logger.Error("encoding frame", zap.Error(err))
		return nil
	}
	return buf.Bytes()
}

func drawMarker(img *image.RGBA, cx, cy int) {
	const half = 8
	bounds := img.Bounds()
	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			if (image.Point{x, y}).In(bounds) {
				img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
}
