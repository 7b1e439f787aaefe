package auth

import (
	"net/http"
	"sort"
)

// ExpandedFolders returns the set of folder ids the user has expanded in the
// sidebar. ok is false until the set has been saved once, letting callers
// apply their own initial state.
func (sm *SessionManager) ExpandedFolders(r *http.Request) (set map[string]bool, ok bool) {
	sess, _ := sm.store.Get(r, sm.name)
	set = make(map[string]bool)
	if ids, found := sess.Values[expandedKey].([]string); found {
		for _, id := range ids {
			set[id] = true
		}
	}
	ok, _ = sess.Values[expandInitKey].(bool)
	return set, ok
}

// SaveExpandedFolders persists the expanded set.
func (sm *SessionManager) SaveExpandedFolders(w http.ResponseWriter, r *http.Request, set map[string]bool) error {
	ids := make([]string, 0, len(set))
	for id, open := range set {
		if open {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[expandedKey] = ids
	sess.Values[expandInitKey] = true
	return sess.Save(r, w)
}
