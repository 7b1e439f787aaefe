package auth

import (
	"net/http"
	"strings"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot notice carried across a redirect.
type Flash struct {
	Kind    string
	Message string
}

// AddFlash queues a notice for the next page the browser loads.
func (sm *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.AddFlash(kind + ":" + msg)
	return sess.Save(r, w)
}

// Flashes returns and clears queued notices. It must run before the
// response body is written because it rewrites the cookie.
func (sm *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, _ := sm.store.Get(r, sm.name)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		sm.logger.Warn("could not clear flashes")
	}

	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		kind, msg, found := strings.Cut(s, ":")
		if !found {
			kind, msg = FlashInfo, s
		}
		out = append(out, Flash{Kind: kind, Message: msg})
	}
	return out
}
