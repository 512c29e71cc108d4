package webauthn

import (
	"crypto/subtle"
	"encoding/json"
)

// Client ceremony types carried in clientDataJSON.
//
// https://www.w3.org/TR/webauthn/#dictionary-client-data
const (
	ceremonyCreate = "webauthn.create"
	ceremonyGet    = "webauthn.get"
)

type clientData struct {
	Type        string `json:"type"`
	Challenge   string `json:"challenge"`
	Origin      string `json:"origin"`
	CrossOrigin bool   `json:"crossOrigin"`
}

func parseClientData(clientDataJSON []byte) (*clientData, bool) {
	if len(clientDataJSON) == 0 {
		return nil, false
	}
	cd := &clientData{}
	if err := json.Unmarshal(clientDataJSON, cd); err != nil {
		return nil, false
	}
	return cd, true
}

// challengeMatches compares the base64url challenge from client data against
// the challenge the server issued, in constant time.
func (cd *clientData) challengeMatches(expected []byte) bool {
	got := Base64UrlDecode(cd.Challenge)
	if got == nil || len(expected) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(got, expected) == 1
}

// originAllowed reports whether the client data origin appears in the
// allow-list. An empty list disables origin checking: a deliberate escape
// hatch for development setups where the serving origin is not fixed.
// Matching is exact and case-sensitive, no normalization.
func (cd *clientData) originAllowed(allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, origin := range allowed {
		if cd.Origin == origin {
			return true
		}
	}
	return false
}
