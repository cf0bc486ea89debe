package domain

// ServiceAccount is the key material used to obtain gateway access tokens.
// It is loaded once at startup and shared read-only.
type ServiceAccount struct {
	Email        string
	PrivateKey   []byte // PEM encoded
	PrivateKeyID string
	ProjectID    string
	TokenURL     string
}
