package google

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-attendance-push/internal/domain"
	googleoauth "golang.org/x/oauth2/google"
)

// MessagingScope is the OAuth2 scope required by the FCM HTTP v1 send endpoint.
const MessagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// LoadServiceAccount reads a service-account key file. projectID, when
// non-empty, overrides the project_id recorded in the file.
func LoadServiceAccount(path, projectID string) (*domain.ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}
	return ParseServiceAccount(data, projectID)
}

// ParseServiceAccount decodes service-account JSON key material.
func ParseServiceAccount(data []byte, projectID string) (*domain.ServiceAccount, error) {
	jc, err := googleoauth.JWTConfigFromJSON(data, MessagingScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}

	if projectID == "" {
		var f struct {
			ProjectID string `json:"project_id"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse service account: %w", err)
		}
		projectID = f.ProjectID
	}
	if projectID == "" {
		return nil, fmt.Errorf("service account has no project_id")
	}

	return &domain.ServiceAccount{
		Email:        jc.Email,
		PrivateKey:   jc.PrivateKey,
		PrivateKeyID: jc.PrivateKeyID,
		ProjectID:    projectID,
		TokenURL:     jc.TokenURL,
	}, nil
}
