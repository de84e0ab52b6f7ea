package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fluid-sim/internal/common"
	"fluid-sim/internal/simulation"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewFrame(t *testing.T) {
	snap := simulation.Snapshot{
		Step: 4,
		Time: 0.4,
		Particles: []simulation.Particle{
			{Position: common.NewVector2(1, 2)},
			{Position: common.NewVector2(3, 4)},
		},
	}
	f := NewFrame(snap)
	if f.Step != 4 || f.Time != 0.4 || len(f.Positions) != 2 || f.Positions[1] != [2]float64{3, 4} {
		t.Errorf("frame = %+v", f)
	}
}

func TestPublishWithoutClients(t *testing.T) {
	h := NewHub(nil)
	if err := h.Publish(simulation.Snapshot{Step: 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestHubStreamsFrames(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()
	defer h.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, "client registration", func() bool { return h.Clients() == 1 })

	snap := simulation.Snapshot{
		Step:      9,
		Time:      0.9,
		Particles: []simulation.Particle{{Position: common.NewVector2(100, 40)}},
	}
	if err := h.Publish(snap); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	var got Frame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Step != 9 || len(got.Positions) != 1 || got.Positions[0] != [2]float64{100, 40} {
		t.Errorf("frame = %+v", got)
	}

	conn.Close()
	waitFor(t, "client removal", func() bool { return h.Clients() == 0 })
}

func TestPlainHTTPIsRejected(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode < 400 {
		t.Errorf("status = %d, want an error status", resp.StatusCode)
	}
	if h.Clients() != 0 {
		t.Errorf("clients = %d", h.Clients())
	}
}
