package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// UserInfoProvider verifies provider tokens by calling the provider's
// OAuth2 userinfo endpoint with the token as a bearer credential. The
// provider rejecting the call means the token is invalid or expired.
type UserInfoProvider struct {
	endpoint string
	client   *http.Client
}

// NewUserInfoProvider creates a provider backed by the given userinfo endpoint
func NewUserInfoProvider(endpoint string) *UserInfoProvider {
	return &UserInfoProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify calls the userinfo endpoint and maps the response to a ProviderIdentity
func (p *UserInfoProvider) Verify(ctx context.Context, providerToken string) (*ProviderIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error building userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+providerToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint rejected token: status %d", resp.StatusCode)
	}

	var payload struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("error decoding userinfo response: %w", err)
	}
	if payload.Sub == "" || payload.Email == "" {
		return nil, fmt.Errorf("userinfo response missing subject or email")
	}

	return &ProviderIdentity{
		ProviderID: payload.Sub,
		Email:      payload.Email,
		Name:       payload.Name,
		AvatarURL:  payload.Picture,
	}, nil
}

var _ IdentityProvider = (*UserInfoProvider)(nil)
