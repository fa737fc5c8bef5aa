package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fixedURL(u string) func() string {
	return func() string { return u }
}

func modelServer(t *testing.T, modelsBody string, modelsDelay time.Duration) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		if modelsDelay > 0 {
			time.Sleep(modelsDelay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(modelsBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckOnlineWithModel(t *testing.T) {
	srv := modelServer(t, `{"object":"list","data":[{"id":"m1","object":"model"}]}`, 0)

	snap := New(fixedURL(srv.URL)).Check(context.Background())
	if !snap.Online {
		t.Error("Online = false, want true")
	}
	if snap.Model != "m1" {
		t.Errorf("Model = %q, want %q", snap.Model, "m1")
	}
}

func TestCheckOfflineOnConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	snap := New(fixedURL(url)).Check(context.Background())
	if snap.Online {
		t.Error("Online = true for unreachable server")
	}
	if snap.Model != Unknown {
		t.Errorf("Model = %q, want %q", snap.Model, Unknown)
	}
}

func TestCheckOfflineOnNon200Health(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	snap := New(fixedURL(srv.URL)).Check(context.Background())
	if snap.Online {
		t.Error("Online = true for 503 health")
	}
}

func TestCheckOnlineUnknownWhenModelsTimesOut(t *testing.T) {
	srv := modelServer(t, `{"object":"list","data":[{"id":"m1"}]}`, time.Second)

	p := New(fixedURL(srv.URL))
	p.Client.Timeout = 100 * time.Millisecond

	snap := p.Check(context.Background())
	if !snap.Online {
		t.Error("Online = false, want true when only the models call fails")
	}
	if snap.Model != Unknown {
		t.Errorf("Model = %q, want %q", snap.Model, Unknown)
	}
}

func TestCheckOnlineUnknownOnMalformedModels(t *testing.T) {
	srv := modelServer(t, `{not json`, 0)

	snap := New(fixedURL(srv.URL)).Check(context.Background())
	if !snap.Online {
		t.Error("Online = false, want true")
	}
	if snap.Model != Unknown {
		t.Errorf("Model = %q, want %q", snap.Model, Unknown)
	}
}

func TestCheckUnknownOnEmptyModelList(t *testing.T) {
	srv := modelServer(t, `{"object":"list","data":[]}`, 0)

	snap := New(fixedURL(srv.URL)).Check(context.Background())
	if !snap.Online || snap.Model != Unknown {
		t.Errorf("snapshot = %+v, want Online with Unknown model", snap)
	}
}

func TestRunReschedulesAfterFailures(t *testing.T) {
	// Unreachable target: every poll fails, the loop must keep going.
	var polls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(fixedURL("http://127.0.0.1:1"))
	p.Client.Timeout = 50 * time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, 10*time.Millisecond, func(snap Snapshot) {
			if snap.Online {
				t.Error("Online = true for unreachable target")
			}
			if polls.Add(1) >= 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	if polls.Load() < 3 {
		t.Errorf("polls = %d, want at least 3", polls.Load())
	}
}
