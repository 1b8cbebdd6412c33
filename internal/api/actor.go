package api

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// bearerSubject returns the subject of the request's bearer JWT, or "".
// Tokens are verified by the auth layer in front of this service, so the
// signature is not checked here.
func bearerSubject(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
