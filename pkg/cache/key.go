package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

const (
	// PublicSilo is the silo used for calls made without a credential.
	PublicSilo = "public"

	// KeyIDParam is the query parameter carrying the credential identifier.
	KeyIDParam = "keyID"

	// SecretParam is the query parameter carrying the credential secret.
	// Its value never reaches a cache key.
	SecretParam = "vCode"

	sanitizedSecret = "SANITIZED"
)

// Key identifies a cached response: the silo it belongs to and a SHA-256
// hash of the canonical request.
type Key struct {
	// Silo is the credential identifier, or PublicSilo for anonymous calls.
	Silo string

	// Hash is the hex encoded SHA-256 of CanonicalRequest.
	Hash string
}

// NewKey derives the cache key for a request target and its full query,
// including credential parameters if any. The client passes the request URL
// without its query as target, so the endpoint is part of the key. keyID
// selects the silo; an empty keyID maps to PublicSilo.
//
// The secret parameter is replaced before hashing, so the same request made
// with a rotated secret hits the same entry.
func NewKey(target string, params url.Values, keyID string) Key {
	silo := keyID
	if silo == "" {
		silo = PublicSilo
	}

	sum := sha256.Sum256([]byte(CanonicalRequest(target, params)))
	return Key{
		Silo: silo,
		Hash: hex.EncodeToString(sum[:]),
	}
}

// CanonicalRequest renders the deterministic string a cache key is hashed
// from: the target followed by the parameters sorted by name.
// Format: target?name1=value1&name2=value2
//
// Example:
//
//	https://api.eveonline.com/char/MarketOrders.xml.aspx?characterID=123&keyID=KEY1&vCode=SANITIZED
func CanonicalRequest(target string, params url.Values) string {
	if len(params) == 0 {
		return target
	}

	sanitized := make(url.Values, len(params))
	for name, values := range params {
		sanitized[name] = values
	}
	if _, ok := sanitized[SecretParam]; ok {
		sanitized[SecretParam] = []string{sanitizedSecret}
	}

	// Encode sorts by parameter name.
	return target + "?" + sanitized.Encode()
}

// String renders the key as silo/hash for logging.
func (k Key) String() string {
	return k.Silo + "/" + k.Hash
}
