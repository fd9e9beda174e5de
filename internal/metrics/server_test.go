package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestServerServesMetrics(t *testing.T) {
	s := NewServer(Config{Addr: "127.0.0.1:0"})
	ln, err := newListener("127.0.0.1:0")
	if err != nil {
		t.Fatalf("newListener() error = %v", err)
	}
	s.http.Addr = ln.Addr().String()
	ln.Close()

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + s.http.Addr + "/metrics")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if _, err := io.ReadAll(resp.Body); err != nil {
		t.Fatalf("read body error = %v", err)
	}
}
