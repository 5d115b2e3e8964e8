package chi

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	suggestuc "github.com/kailas-cloud/intentsearch/internal/usecase/suggest"
)

const (
	liveWriteWait   = 5 * time.Second
	liveMaxMessage  = 1024
	liveMessageType = "suggestions"
)

// SuggestLive handles GET /v1/suggest/live. The client sends {"q": ...} per
// keystroke and receives debounced suggestion lists.
func (s *Server) SuggestLive(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())
	log := s.log(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var writeMu sync.Mutex
	emit := func(partial string, suggestions []suggestuc.Suggestion) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		err := conn.WriteJSON(LiveMessage{
			Type:        liveMessageType,
			Q:           partial,
			Suggestions: suggestionsToDTO(suggestions),
		})
		if err != nil {
			log.Debug("Live suggestion write failed", zap.Error(err))
			cancel()
		}
	}

	live := suggestuc.NewLiveSession(ctx, s.suggest, id.Device, s.opts.Scheduler, s.opts.LiveDebounce, emit)
	defer live.Close()

	conn.SetReadLimit(liveMaxMessage)
	for {
		var req LiveRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("Live suggestion socket closed", zap.Error(err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		live.Input(req.Q)
	}
}

// originChecker allows the listed origins; with none listed the upgrader's
// same-origin check applies.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[u.Scheme+"://"+u.Host]
		return ok
	}
}
