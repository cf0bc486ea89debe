package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-attendance-push/internal/domain"
	jwtinfra "github.com/go-attendance-push/internal/infrastructure/jwt"
	"golang.org/x/oauth2"
)

const (
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL   = time.Hour
)

// TokenProvider exchanges a signed service-account assertion for a bearer
// access token. Every call performs a fresh exchange; wrap it with Cached to
// reuse tokens until they expire.
type TokenProvider struct {
	account    *domain.ServiceAccount
	signer     *jwtinfra.Provider
	scope      string
	httpClient *http.Client
	now        func() time.Time
}

// NewTokenProvider parses the account's private key once. The account is
// shared read-only by every caller.
func NewTokenProvider(account *domain.ServiceAccount, httpClient *http.Client) (*TokenProvider, error) {
	signer, err := jwtinfra.NewProvider(account.PrivateKey, account.PrivateKeyID, assertionTTL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenProvider{
		account:    account,
		signer:     signer,
		scope:      MessagingScope,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

// AccessToken returns a bearer token for the messaging gateway.
func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	tok, err := p.Exchange(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Exchange signs an assertion and trades it at the token endpoint.
// All failures wrap domain.ErrAuth.
func (p *TokenProvider) Exchange(ctx context.Context) (*oauth2.Token, error) {
	assertion, err := p.assertion()
	if err != nil {
		return nil, fmt.Errorf("%w: sign assertion: %v", domain.ErrAuth, err)
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.account.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrAuth, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", domain.ErrAuth, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read token response: %v", domain.ErrAuth, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint returned %d: %s", domain.ErrAuth, resp.StatusCode, body)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: decode token response: %v", domain.ErrAuth, err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", domain.ErrAuth)
	}

	tok := &oauth2.Token{AccessToken: tr.AccessToken, TokenType: tr.TokenType}
	if tr.ExpiresIn > 0 {
		tok.Expiry = p.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}

func (p *TokenProvider) assertion() (string, error) {
	return p.signer.Sign(p.account.Email, p.account.TokenURL, p.scope, p.now())
}
