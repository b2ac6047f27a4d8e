package httputil

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUserDetails_FromHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Ms-Client-Principal-Id", "user-123")
	r.Header.Set("X-Ms-Client-Principal-Name", "sam@example.com")

	user := ExtractUserDetails(r)
	assert.Equal(t, "user-123", user.PrincipalID)
	assert.Equal(t, "sam@example.com", user.PrincipalName)
}

func TestExtractUserDetails_DevFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)

	user := ExtractUserDetails(r)
	assert.Equal(t, devPrincipalID, user.PrincipalID)
	assert.Equal(t, devPrincipalName, user.PrincipalName)
}
