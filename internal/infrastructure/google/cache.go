package google

import (
	"context"
	"fmt"

	"github.com/go-attendance-push/internal/domain"
	"golang.org/x/oauth2"
)

// CachedTokenProvider reuses a token until shortly before it expires.
type CachedTokenProvider struct {
	src oauth2.TokenSource
}

// Cached wraps p with oauth2.ReuseTokenSource. Exchanges made by the cache
// run on a background context, since a token outlives the request that
// fetched it.
func Cached(p *TokenProvider) *CachedTokenProvider {
	return &CachedTokenProvider{
		src: oauth2.ReuseTokenSource(nil, exchangeSource{p: p}),
	}
}

func (c *CachedTokenProvider) AccessToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	tok, err := c.src.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

type exchangeSource struct{ p *TokenProvider }

func (s exchangeSource) Token() (*oauth2.Token, error) {
	return s.p.Exchange(context.Background())
}
