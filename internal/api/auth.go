package api

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/analyticsreporting/v4"
)

// OAuth2 scope required for Reporting API access
const AnalyticsReadOnlyScope = analyticsreporting.AnalyticsReadonlyScope

// LoadCredentials reads a service account key file and scopes it for read-only reporting access
func LoadCredentials(ctx context.Context, path string) (*google.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, AnalyticsReadOnlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}

	return creds, nil
}

// ValidateCredentials tests the credentials by requesting an access token
func ValidateCredentials(creds *google.Credentials) (*oauth2.Token, error) {
	if creds == nil || creds.TokenSource == nil {
		return nil, fmt.Errorf("credentials have no token source")
	}

	token, err := creds.TokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("received empty access token")
	}

	if !token.Valid() {
		return nil, fmt.Errorf("received invalid token")
	}

	return token, nil
}
