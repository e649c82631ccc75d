package model

import "time"

// Credential holds the OAuth tokens granted by a chat user. A record exists
// only after a completed OAuth exchange; it is overwritten on every
// successful callback.
type Credential struct {
	ChatID       string    `db:"chat_id" json:"-"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenURL     string    `json:"token_url"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Valid reports whether the record carries enough material for the gateway
// to authenticate, possibly via a refresh.
func (c *Credential) Valid() bool {
	if c == nil {
		return false
	}
	return c.AccessToken != "" || c.RefreshToken != ""
}
