package usertoken

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	defaultIssuer   = "readfluent-auth"
	defaultAudience = "readfluent-api"
	defaultLeeway   = 30 * time.Second

	// How long a fetched key set is considered fresh. A token signed with an
	// unknown kid forces a refetch regardless, so rotation is picked up
	// immediately.
	keySetTTL = 5 * time.Minute
)

var errUnknownKey = errors.New("token signed with unknown key")

// Config configures access-token verification against the auth issuer.
type Config struct {
	JWKSURL    string
	Issuer     string
	Audience   string
	Leeway     time.Duration
	HTTPClient *http.Client
}

// Verifier checks RS256 access tokens against the issuer's published JWKS
// and extracts the subject user ID. This service never mints tokens; it only
// verifies what the external issuer signed.
type Verifier struct {
	issuer   string
	audience string
	leeway   time.Duration
	keys     *keySet
}

// NewVerifier creates a verifier and fetches the issuer's keys once up front
// so a misconfigured JWKS URL fails at startup, not on the first request.
func NewVerifier(cfg Config) (*Verifier, error) {
	jwksURL := strings.TrimSpace(cfg.JWKSURL)
	if jwksURL == "" {
		return nil, errors.New("token verifier requires jwksURL")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = defaultLeeway
	}
	v := &Verifier{
		issuer:   valueOr(cfg.Issuer, defaultIssuer),
		audience: valueOr(cfg.Audience, defaultAudience),
		leeway:   leeway,
		keys:     &keySet{url: jwksURL, http: httpClient},
	}
	if err := v.keys.refresh(); err != nil {
		return nil, err
	}
	return v, nil
}

// VerifySubject validates the token and returns its subject user ID.
func (v *Verifier) VerifySubject(token string) (string, error) {
	claims, err := v.parse(token)
	if errors.Is(err, errUnknownKey) || (err != nil && v.keys.stale()) {
		// The issuer may have rotated keys since the last fetch.
		if refreshErr := v.keys.refresh(); refreshErr != nil {
			return "", refreshErr
		}
		claims, err = v.parse(token)
	}
	if err != nil {
		return "", err
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}

func (v *Verifier) parse(token string) (jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, v.keys.lookup,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return claims, err
	}
	if !parsed.Valid {
		return claims, errors.New("invalid token")
	}
	return claims, nil
}

func valueOr(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// keySet caches the issuer's RSA public keys by kid.
type keySet struct {
	url  string
	http *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	refreshed time.Time
}

// lookup is the jwt keyfunc. A token without a kid is accepted only when the
// set holds exactly one key.
func (ks *keySet) lookup(t *jwt.Token) (any, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	kid, _ := t.Header["kid"].(string)
	kid = strings.TrimSpace(kid)
	if kid == "" {
		if len(ks.keys) == 1 {
			for _, key := range ks.keys {
				return key, nil
			}
		}
		return nil, errUnknownKey
	}
	key, ok := ks.keys[kid]
	if !ok {
		return nil, errUnknownKey
	}
	return key, nil
}

func (ks *keySet) stale() bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return time.Since(ks.refreshed) > keySetTTL
}

func (ks *keySet) refresh() error {
	resp, err := ks.http.Get(ks.url)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		kid := strings.TrimSpace(k.Kid)
		if !strings.EqualFold(strings.TrimSpace(k.Kty), "RSA") || kid == "" {
			continue
		}
		pub, err := decodeRSAKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks has no usable rsa keys")
	}

	ks.mu.Lock()
	ks.keys = keys
	ks.refreshed = time.Now()
	ks.mu.Unlock()
	return nil
}

func decodeRSAKey(nRaw, eRaw string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(nRaw))
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(eRaw))
	if err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)
	if n.Sign() <= 0 || !e.IsInt64() || e.Int64() <= 0 || e.Int64() > 1<<31 {
		return nil, errors.New("invalid rsa key parameters")
	}
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}
