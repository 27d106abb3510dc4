package display

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"
)

func TestLiveGreetsAndStreamsFrames(t *testing.T) {
	live := NewLive([]float64{-1, 0, 1}, []float64{3, 1, 3}, []float64{1, 0, 1})
	srv := httptest.NewServer(live.Handler())
	defer srv.Close()

	if err := live.Publish(Frame{Step: 0, DScore: -1.4, Confidence: 0.6, Curve: []float64{1, 0.5, 1}}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	ws, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", "", "http://localhost/")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer ws.Close()
	ws.SetDeadline(time.Now().Add(5 * time.Second))

	var hello liveMessage
	if err := websocket.JSON.Receive(ws, &hello); err != nil {
		t.Fatalf("receive hello: %v", err)
	}
	if hello.Type != "hello" || len(hello.Points) != 3 || hello.Upper[0] != 3 {
		t.Fatalf("unexpected hello %+v", hello)
	}

	var latest liveMessage
	if err := websocket.JSON.Receive(ws, &latest); err != nil {
		t.Fatalf("receive latest: %v", err)
	}
	if latest.Type != "frame" || latest.Frame == nil || latest.Frame.Step != 0 {
		t.Fatalf("unexpected latest frame %+v", latest)
	}
	if latest.Score != "D score = -1.40 (-1.38 for G to converge)" {
		t.Fatalf("unexpected score caption %q", latest.Score)
	}

	if err := live.Publish(Frame{Step: 50, Curve: []float64{2, 1, 2}}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	var next liveMessage
	if err := websocket.JSON.Receive(ws, &next); err != nil {
		t.Fatalf("receive next: %v", err)
	}
	if next.Frame == nil || next.Frame.Step != 50 || next.Frame.Curve[0] != 2 {
		t.Fatalf("unexpected streamed frame %+v", next)
	}
	if live.Clients() != 1 {
		t.Fatalf("expected 1 client, got %d", live.Clients())
	}
}

func TestLiveServesPage(t *testing.T) {
	srv := httptest.NewServer(NewLive(nil, nil, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "dScoreText") {
		t.Fatalf("unexpected page: status=%d", resp.StatusCode)
	}

	missing, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}
}
