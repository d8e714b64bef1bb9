package auth

import "strings"

// AdminSet is the configured list of uids allowed to manage reference data.
type AdminSet map[string]struct{}

func NewAdminSet(uids []string) AdminSet {
	set := make(AdminSet, len(uids))
	for _, u := range uids {
		if u = strings.TrimSpace(u); u != "" {
			set[u] = struct{}{}
		}
	}
	return set
}

func (s AdminSet) Contains(uid string) bool {
	_, ok := s[uid]
	return ok
}
