package identity

import (
	"context"
	"strings"
)

// ConfigProvider serves a single user from local configuration.
type ConfigProvider struct {
	email string
	name  string
}

// NewConfigProvider creates a provider for the configured user.
func NewConfigProvider(email, name string) *ConfigProvider {
	return &ConfigProvider{
		email: strings.TrimSpace(email),
		name:  strings.TrimSpace(name),
	}
}

// CurrentUser returns the configured user, or ErrUnauthenticated when no
// email is configured.
func (p *ConfigProvider) CurrentUser(_ context.Context) (Identity, error) {
	if err := ValidateEmail(p.email); err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID: UserID(p.email),
		Email:  p.email,
	}, nil
}

// Profile returns the configured profile for userID.
func (p *ConfigProvider) Profile(ctx context.Context, userID string) (Profile, error) {
	id, err := p.CurrentUser(ctx)
	if err != nil {
		return Profile{}, err
	}
	if id.UserID != userID {
		return Profile{}, ErrProfileNotFound
	}
	return Profile{
		FullName: p.name,
		Email:    p.email,
	}, nil
}
