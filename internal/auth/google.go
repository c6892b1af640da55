package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleUser is the OpenID Connect userinfo the store keeps.
type GoogleUser struct {
	Sub           string `json:"sub"` // stable account ID, the link key
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// DisplayName is the profile name, or the email's local part without one.
func (u *GoogleUser) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// GoogleProvider runs the same Authorization Code flow as GitHubProvider
// against Google, reading the profile from the OpenID userinfo endpoint.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider creates a GoogleProvider. callbackURL must be listed as
// an authorized redirect URI of the OAuth client, e.g.
// "http://localhost:8080/auth/google/callback".
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// AuthURL returns the Google consent URL for the given CSRF state.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the user's Google profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	return p.fetchUser(ctx, p.config.Client(ctx, oauthToken))
}

func (p *GoogleProvider) fetchUser(ctx context.Context, client *http.Client) (*GoogleUser, error) {
	var gUser GoogleUser
	if err := getJSON(ctx, client, p.userInfoURL, "application/json", &gUser); err != nil {
		return nil, err
	}
	if gUser.Sub == "" {
		return nil, fmt.Errorf("auth: Google returned a user without a subject")
	}
	return &gUser, nil
}
