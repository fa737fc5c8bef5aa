// Package monitor polls a llama-server endpoint for liveness and the
// loaded model. Poll failures are ordinary Offline/Unknown outcomes,
// never errors.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mkv889/llama.cpp-SimpleGUI/pkg/api"
)

// Unknown is reported when the model id cannot be determined.
const Unknown = "Unknown"

// Snapshot is the result of one poll. Each poll overwrites the last;
// no history is kept.
type Snapshot struct {
	Online bool
	Model  string
}

// Poller checks a server's /health and /v1/models endpoints.
type Poller struct {
	// BaseURL returns the server root URL for the next poll. It is
	// a function so the UI can redirect the poll when the endpoint
	// fields change.
	BaseURL func() string

	Client *http.Client
}

// New returns a poller with the standard short-timeout client.
func New(baseURL func() string) *Poller {
	return &Poller{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 2 * time.Second},
	}
}

// Check performs one poll. Offline means the health check did not
// return 200 for any reason; a reachable server with an unreadable
// model list is Online with an Unknown model.
func (p *Poller) Check(ctx context.Context) Snapshot {
	base := p.BaseURL()
	if base == "" {
		return Snapshot{Online: false, Model: Unknown}
	}

	if !p.get(ctx, base+"/health", nil) {
		return Snapshot{Online: false, Model: Unknown}
	}

	snap := Snapshot{Online: true, Model: Unknown}
	var list api.ModelListResponse
	if p.get(ctx, base+"/v1/models", &list) && len(list.Data) > 0 && list.Data[0].ID != "" {
		snap.Model = list.Data[0].ID
	}
	return snap
}

// get issues a GET and reports success. When out is non-nil the body
// must also decode into it.
func (p *Poller) get(ctx context.Context, url string, out any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false
		}
	}
	return true
}

// Run polls on a fixed period, delivering every snapshot to fn, until
// ctx is cancelled. The loop reschedules unconditionally, including
// after failed polls.
func (p *Poller) Run(ctx context.Context, every time.Duration, fn func(Snapshot)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(p.Check(ctx))
		}
	}
}
