package middleware

import (
	"net/http"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/soundry/Royalty-Ledger-Backend/internal/api/response"
)

// timeTokenTTL is how long a time token stays valid after issuance.
const timeTokenTTL = 60 * time.Second

// APIKeyAuth guards the internal machine-to-machine endpoints (earnings
// ingestion, payout processing callbacks). Callers present a static API key
// in X-API-Key plus a fernet-encrypted timestamp in X-Time-Token; the token
// is minted with the shared fernet key and expires after timeTokenTTL, so a
// captured request cannot be replayed later.
type APIKeyAuth struct {
	apiKey string
	keys   []*fernet.Key
}

// NewAPIKeyAuth creates the middleware from the configured API key and
// base64 fernet key.
func NewAPIKeyAuth(apiKey, fernetKey string) (*APIKeyAuth, error) {
	keys, err := fernet.DecodeKeys(fernetKey)
	if err != nil {
		return nil, err
	}
	return &APIKeyAuth{apiKey: apiKey, keys: keys}, nil
}

// Handler validates the API key and time token before passing the request on.
func (a *APIKeyAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if key != a.apiKey {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		token := r.Header.Get("X-Time-Token")
		if token == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		if msg := fernet.VerifyAndDecrypt([]byte(token), timeTokenTTL, a.keys); msg == nil {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// MintTimeToken issues a fresh time token for the given fernet key. Used by
// internal clients and tests.
func MintTimeToken(key *fernet.Key) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(time.Now().UTC().Format(time.RFC3339)), key)
	if err != nil {
		return "", err
	}
	return string(token), nil
}
