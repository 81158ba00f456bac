package usertoken

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// jwksIssuer serves a JWKS document for a rotating set of RSA keys and signs
// tokens with them.
type jwksIssuer struct {
	t    *testing.T
	keys map[string]*rsa.PrivateKey
	srv  *httptest.Server
	hits int
}

func newJWKSIssuer(t *testing.T, kids ...string) *jwksIssuer {
	t.Helper()
	iss := &jwksIssuer{t: t, keys: map[string]*rsa.PrivateKey{}}
	for _, kid := range kids {
		iss.addKey(kid)
	}
	iss.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		iss.hits++
		type jwk struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		}
		var doc struct {
			Keys []jwk `json:"keys"`
		}
		for kid, key := range iss.keys {
			pub := &key.PublicKey
			doc.Keys = append(doc.Keys, jwk{
				Kty: "RSA",
				Kid: kid,
				N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			})
		}
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(iss.srv.Close)
	return iss
}

func (iss *jwksIssuer) addKey(kid string) {
	iss.t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		iss.t.Fatalf("generate rsa key: %v", err)
	}
	iss.keys[kid] = key
}

func (iss *jwksIssuer) rotate(kid string) {
	iss.t.Helper()
	iss.keys = map[string]*rsa.PrivateKey{}
	iss.addKey(kid)
}

func (iss *jwksIssuer) sign(kid string, claims jwt.RegisteredClaims) string {
	iss.t.Helper()
	key, ok := iss.keys[kid]
	if !ok {
		iss.t.Fatalf("no key %q", kid)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		iss.t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (iss *jwksIssuer) signWithoutKid(kid string, claims jwt.RegisteredClaims) string {
	iss.t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(iss.keys[kid])
	if err != nil {
		iss.t.Fatalf("sign token: %v", err)
	}
	return signed
}

func testClaims(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "auth.test",
		Audience:  jwt.ClaimStrings{"api.test"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
}

func newTestVerifier(t *testing.T, iss *jwksIssuer) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{
		JWKSURL:  iss.srv.URL,
		Issuer:   "auth.test",
		Audience: "api.test",
	})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	return v
}

func TestVerifySubject(t *testing.T) {
	iss := newJWKSIssuer(t, "k1")
	v := newTestVerifier(t, iss)

	subject, err := v.VerifySubject(iss.sign("k1", testClaims("user-42")))
	if err != nil {
		t.Fatalf("VerifySubject() error = %v", err)
	}
	if subject != "user-42" {
		t.Errorf("subject = %q, want %q", subject, "user-42")
	}
}

func TestVerifySubjectRejectsBadClaims(t *testing.T) {
	iss := newJWKSIssuer(t, "k1")
	v := newTestVerifier(t, iss)

	expired := testClaims("user-42")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-10 * time.Minute))

	wrongIssuer := testClaims("user-42")
	wrongIssuer.Issuer = "somebody-else"

	wrongAudience := testClaims("user-42")
	wrongAudience.Audience = jwt.ClaimStrings{"other-api"}

	noSubject := testClaims("")

	tests := []struct {
		name   string
		claims jwt.RegisteredClaims
	}{
		{"expired", expired},
		{"wrong issuer", wrongIssuer},
		{"wrong audience", wrongAudience},
		{"no subject", noSubject},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.VerifySubject(iss.sign("k1", tc.claims)); err == nil {
				t.Error("VerifySubject() succeeded, want error")
			}
		})
	}
}

func TestVerifySubjectRefreshesOnKeyRotation(t *testing.T) {
	iss := newJWKSIssuer(t, "k1")
	v := newTestVerifier(t, iss)

	iss.rotate("k2")
	subject, err := v.VerifySubject(iss.sign("k2", testClaims("user-7")))
	if err != nil {
		t.Fatalf("VerifySubject() after rotation error = %v", err)
	}
	if subject != "user-7" {
		t.Errorf("subject = %q, want %q", subject, "user-7")
	}
	if iss.hits != 2 {
		t.Errorf("jwks fetches = %d, want 2 (startup + rotation refresh)", iss.hits)
	}
}

func TestVerifySubjectAcceptsKidlessTokenWithSingleKey(t *testing.T) {
	iss := newJWKSIssuer(t, "only")
	v := newTestVerifier(t, iss)

	subject, err := v.VerifySubject(iss.signWithoutKid("only", testClaims("user-9")))
	if err != nil {
		t.Fatalf("VerifySubject() error = %v", err)
	}
	if subject != "user-9" {
		t.Errorf("subject = %q, want %q", subject, "user-9")
	}
}

func TestNewVerifierValidation(t *testing.T) {
	if _, err := NewVerifier(Config{}); err == nil {
		t.Error("NewVerifier() without jwksURL succeeded, want error")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	if _, err := NewVerifier(Config{JWKSURL: srv.URL}); err == nil {
		t.Error("NewVerifier() with failing jwks endpoint succeeded, want error")
	}
}
