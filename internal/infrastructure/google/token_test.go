package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-attendance-push/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newTestKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return key, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func serviceAccountJSON(t *testing.T, keyPEM []byte, tokenURL string) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "attendance-demo",
		"private_key_id": "kid-1",
		"private_key":    string(keyPEM),
		"client_email":   "notifier@attendance-demo.iam.gserviceaccount.com",
		"token_uri":      tokenURL,
	})
	require.NoError(t, err)
	return data
}

// tokenServer verifies the assertion it receives and counts exchanges.
func tokenServer(t *testing.T, pub *rsa.PublicKey, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		if !assert.NoError(t, r.ParseForm()) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, jwtBearerGrant, r.PostForm.Get("grant_type"))

		tok, err := jwt.Parse(r.PostForm.Get("assertion"), func(tok *jwt.Token) (interface{}, error) {
			return pub, nil
		}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithoutClaimsValidation())
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		claims := tok.Claims.(jwt.MapClaims)
		assert.Equal(t, "notifier@attendance-demo.iam.gserviceaccount.com", claims["iss"])
		assert.Equal(t, MessagingScope, claims["scope"])
		assert.Equal(t, srv.URL, claims["aud"])
		assert.Equal(t, "kid-1", tok.Header["kid"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.token","token_type":"Bearer","expires_in":3599}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// --- tests ---

func TestParseServiceAccount(t *testing.T) {
	_, keyPEM := newTestKey(t)
	acc, err := ParseServiceAccount(serviceAccountJSON(t, keyPEM, "https://oauth2.example/token"), "")
	require.NoError(t, err)
	assert.Equal(t, "notifier@attendance-demo.iam.gserviceaccount.com", acc.Email)
	assert.Equal(t, "attendance-demo", acc.ProjectID)
	assert.Equal(t, "kid-1", acc.PrivateKeyID)
	assert.Equal(t, "https://oauth2.example/token", acc.TokenURL)
}

func TestParseServiceAccount_ProjectOverride(t *testing.T) {
	_, keyPEM := newTestKey(t)
	acc, err := ParseServiceAccount(serviceAccountJSON(t, keyPEM, ""), "other-project")
	require.NoError(t, err)
	assert.Equal(t, "other-project", acc.ProjectID)
	assert.NotEmpty(t, acc.TokenURL)
}

func TestParseServiceAccount_Invalid(t *testing.T) {
	_, err := ParseServiceAccount([]byte(`{"type":"authorized_user"}`), "")
	assert.Error(t, err)
}

func TestLoadServiceAccount_File(t *testing.T) {
	_, keyPEM := newTestKey(t)
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, serviceAccountJSON(t, keyPEM, "https://oauth2.example/token"), 0o600))

	acc, err := LoadServiceAccount(path, "")
	require.NoError(t, err)
	assert.Equal(t, "attendance-demo", acc.ProjectID)

	_, err = LoadServiceAccount(filepath.Join(t.TempDir(), "missing.json"), "")
	assert.Error(t, err)
}

func TestTokenProvider_AccessToken(t *testing.T) {
	key, keyPEM := newTestKey(t)
	var calls atomic.Int32
	srv := tokenServer(t, &key.PublicKey, &calls)

	acc, err := ParseServiceAccount(serviceAccountJSON(t, keyPEM, srv.URL), "")
	require.NoError(t, err)
	p, err := NewTokenProvider(acc, srv.Client())
	require.NoError(t, err)

	tok, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tok)

	// No reuse: every call performs a fresh exchange.
	_, err = p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestTokenProvider_ExchangeSetsExpiry(t *testing.T) {
	key, keyPEM := newTestKey(t)
	var calls atomic.Int32
	srv := tokenServer(t, &key.PublicKey, &calls)

	acc, err := ParseServiceAccount(serviceAccountJSON(t, keyPEM, srv.URL), "")
	require.NoError(t, err)
	p, err := NewTokenProvider(acc, srv.Client())
	require.NoError(t, err)
	fixed := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	tok, err := p.Exchange(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, fixed.Add(3599*time.Second), tok.Expiry)
}

func TestTokenProvider_Rejected(t *testing.T) {
	_, keyPEM := newTestKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	acc, err := ParseServiceAccount(serviceAccountJSON(t, keyPEM, srv.URL), "")
	require.NoError(t, err)
	p, err := NewTokenProvider(acc, srv.Client())
	require.NoError(t, err)

	_, err = p.AccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))
	assert.ErrorContains(t, err, "invalid_grant")
}

func TestTokenProvider_NetworkError(t *testing.T) {
	_, keyPEM := newTestKey(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	acc, err := ParseServiceAccount(serviceAccountJSON(t, keyPEM, url), "")
	require.NoError(t, err)
	p, err := NewTokenProvider(acc, nil)
	require.NoError(t, err)

	_, err = p.AccessToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestNewTokenProvider_BadKey(t *testing.T) {
	_, err := NewTokenProvider(&domain.ServiceAccount{PrivateKey: []byte("not a key")}, nil)
	assert.Error(t, err)
}

func TestCached_ReusesToken(t *testing.T) {
	key, keyPEM := newTestKey(t)
	var calls atomic.Int32
	srv := tokenServer(t, &key.PublicKey, &calls)

	acc, err := ParseServiceAccount(serviceAccountJSON(t, keyPEM, srv.URL), "")
	require.NoError(t, err)
	p, err := NewTokenProvider(acc, srv.Client())
	require.NoError(t, err)
	c := Cached(p)

	for i := 0; i < 3; i++ {
		tok, err := c.AccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ya29.token", tok)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestCached_CancelledContext(t *testing.T) {
	_, keyPEM := newTestKey(t)
	acc, err := ParseServiceAccount(serviceAccountJSON(t, keyPEM, "http://127.0.0.1:1"), "")
	require.NoError(t, err)
	p, err := NewTokenProvider(acc, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Cached(p).AccessToken(ctx)
	assert.ErrorIs(t, err, domain.ErrAuth)
}
