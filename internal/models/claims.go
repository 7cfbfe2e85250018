package models

import "github.com/golang-jwt/jwt/v5"

// Claims are the JWT session claims issued on login. The password travels
// encrypted with the session key so the backend can re-authenticate against
// the classifier service on behalf of the user without storing it anywhere.
type Claims struct {
	Username          string   `json:"username"`
	Tenants           []string `json:"tenants"`
	EncryptedPassword string   `json:"epwd,omitempty"`
	jwt.RegisteredClaims
}

// Profile is the user payload returned by the authenticate endpoints.
type Profile struct {
	Username string   `json:"username"`
	Tenants  []string `json:"tenants"`
}
