package watch

import (
	"bufio"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DefaultHeartbeat is the SSE keep-alive interval.
const DefaultHeartbeat = 30 * time.Second

// LiveReloadHub fans reload notifications out to browsers over SSE.
// Clients whose buffers are full are dropped rather than blocking a broadcast.
type LiveReloadHub struct {
	mu        sync.RWMutex
	nextID    int
	clients   map[int]*lrClient
	closed    bool
	last      string
	heartbeat time.Duration
	logger    *slog.Logger
}

type lrClient struct {
	id   int
	ch   chan string
	done chan struct{}
}

// NewLiveReloadHub returns an open hub.
func NewLiveReloadHub(logger *slog.Logger) *LiveReloadHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveReloadHub{clients: map[int]*lrClient{}, heartbeat: DefaultHeartbeat, logger: logger}
}

// Clients returns the number of connected clients.
func (h *LiveReloadHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP implements the SSE endpoint at /livereload.
func (h *LiveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	client := &lrClient{ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	client.id = h.nextID
	h.nextID++
	h.clients[client.id] = client
	current := h.last
	h.mu.Unlock()
	defer h.removeClient(client.id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	bw := bufio.NewWriter(w)
	send := func(s string) bool {
		if _, err := bw.WriteString(s); err != nil {
			h.logger.Debug("livereload write", slog.String("error", err.Error()))
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	// The first event is the baseline the browser compares later hashes to.
	if !send(": connected\n\ndata: {\"hash\":\"" + current + "\"}\n\n") {
		return
	}

	hb := time.NewTicker(h.heartbeat)
	defer hb.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-hb.C:
			if !send(": ping\n\n") {
				return
			}
		case hash := <-client.ch:
			if !send("data: {\"hash\":\"" + hash + "\"}\n\n") {
				return
			}
		}
	}
}

func (h *LiveReloadHub) removeClient(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// Broadcast sends hash to every client. Repeated hashes are ignored.
func (h *LiveReloadHub) Broadcast(hash string) {
	h.mu.Lock()
	if h.closed || hash == "" || hash == h.last {
		h.mu.Unlock()
		return
	}
	h.last = hash
	snapshot := make([]*lrClient, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	dropped := 0
	for _, c := range snapshot {
		select {
		case c.ch <- hash:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	h.logger.Debug("livereload broadcast",
		slog.String("hash", hash),
		slog.Int("clients", len(snapshot)),
		slog.Int("dropped", dropped))
}

// Shutdown disconnects all clients and rejects new ones.
func (h *LiveReloadHub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.done)
	}
}

// ScriptHandler serves the browser client at /livereload.js.
func ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write([]byte(LiveReloadScript))
	})
}

// LiveReloadScript reloads the page when the hub announces a new hash.
// Hashes prefixed with "error:" report a failed reload and are only logged.
const LiveReloadScript = `(() => {
  if (window.__COURSESITE_LR__) return;
  window.__COURSESITE_LR__ = true;
  function connect() {
    const es = new EventSource('/livereload');
    let current = null;
    es.onmessage = (e) => {
      try {
        const hash = JSON.parse(e.data).hash || '';
        if (current === null) { current = hash; return; }
        if (hash === current) return;
        current = hash;
        if (hash.startsWith('error:')) { console.warn('[coursesite] reload failed, see server log'); return; }
        location.reload();
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();
`
