package jwtinfra

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the payload of a service-account assertion. Audience is a
// single string on the wire; RegisteredClaims.Audience stays unset.
type Claims struct {
	Scope    string `json:"scope"`
	Audience string `json:"aud"`
	jwt.RegisteredClaims
}

// GetAudience lets the parser's audience check see the string claim.
func (c Claims) GetAudience() (jwt.ClaimStrings, error) {
	if c.Audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{c.Audience}, nil
}

// Provider signs RS256 assertions with a service-account key.
type Provider struct {
	privateKey *rsa.PrivateKey
	keyID      string
	expiry     time.Duration
}

// NewProvider parses a PEM-encoded RSA private key (PKCS#1 or PKCS#8).
// keyID, when set, is sent as the "kid" header.
func NewProvider(privateKeyPEM []byte, keyID string, expiry time.Duration) (*Provider, error) {
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Provider{privateKey: privKey, keyID: keyID, expiry: expiry}, nil
}

// Sign returns an assertion issued by issuer for audience, valid from now
// until now+expiry.
func (p *Provider) Sign(issuer, audience, scope string, now time.Time) (string, error) {
	claims := Claims{
		Scope:    scope,
		Audience: audience,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if p.keyID != "" {
		token.Header["kid"] = p.keyID
	}
	return token.SignedString(p.privateKey)
}

// PublicKey returns the verification key matching the signing key.
func (p *Provider) PublicKey() *rsa.PublicKey { return &p.privateKey.PublicKey }
