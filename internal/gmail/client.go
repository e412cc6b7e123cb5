// Package gmail provides the Gmail API adapter: OAuth account linking
// and per-user mailbox sessions.
package gmail

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"mailagent/internal/config"
)

// NewOAuthConfig builds the OAuth config used both for the consent
// flow and for refreshing stored user tokens.
func NewOAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			gmail.GmailReadonlyScope,
			gmail.GmailModifyScope,
			gmail.GmailSendScope,
		},
	}
}

// AuthURL returns the Google consent URL. Offline access and forced
// approval are required to receive a refresh token.
func AuthURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades an authorization code for tokens and resolves
// the account's email address.
func ExchangeCode(ctx context.Context, conf *oauth2.Config, code string) (*oauth2.Token, string, error) {
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange authorization code: %v", err)
	}

	service, err := gmail.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, token)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create gmail service: %v", err)
	}

	profile, err := service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user profile: %v", err)
	}

	return token, profile.EmailAddress, nil
}
