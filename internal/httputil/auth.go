package httputil

import (
	"net/http"
	"strings"
)

// Development identity used when the auth proxy headers are absent, so the
// service stays usable when run without the fronting identity provider.
const (
	devPrincipalID   = "00000000-0000-0000-0000-000000000000"
	devPrincipalName = "testuser@constosodemo.com"
)

// UserDetails identifies the authenticated caller.
type UserDetails struct {
	PrincipalID   string
	PrincipalName string
}

// ExtractUserDetails reads the identity the auth proxy injects into request
// headers:
//
//  1. X-Ms-Client-Principal-Id   → PrincipalID
//  2. X-Ms-Client-Principal-Name → PrincipalName
//
// When the id header is missing the fixed development principal is returned.
func ExtractUserDetails(r *http.Request) UserDetails {
	id := strings.TrimSpace(r.Header.Get("X-Ms-Client-Principal-Id"))
	name := strings.TrimSpace(r.Header.Get("X-Ms-Client-Principal-Name"))
	if id == "" {
		return UserDetails{PrincipalID: devPrincipalID, PrincipalName: devPrincipalName}
	}
	return UserDetails{PrincipalID: id, PrincipalName: name}
}
