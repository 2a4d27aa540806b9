package cookie

import "time"

// Record is one cached session reference. The full authoritative session
// lives in the identity API; the record carries only what is needed to
// re-fetch it (id + token) plus the lookup keys used by the login UI.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	ID           string `json:"id"`
	Token        string `json:"token"`
	LoginName    string `json:"loginName"`
	Organization string `json:"organization,omitempty"`
	CreationTS   int64  `json:"creationTs"`
	ExpirationTS int64  `json:"expirationTs,omitempty"`
	ChangeTS     int64  `json:"changeTs"`
	RequestID    string `json:"requestId,omitempty"`
}

// Expired reports whether the record's expiration timestamp has passed.
// A zero ExpirationTS means the record never expires on its own.
func (r Record) Expired(now time.Time) bool {
	return r.ExpirationTS > 0 && r.ExpirationTS <= now.Unix()
}
