package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"catalog-service/internal/auth"
	"catalog-service/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const (
	providerName = "google"
	issuer       = "https://accounts.google.com"

	// postmessage is the redirect URI used by the one-time-code flow of
	// Google's JavaScript sign-in.
	postmessage = "postmessage"
)

// Endpoints are the Google APIs used after the code exchange.
type Endpoints struct {
	TokenInfoURL string
	UserInfoURL  string
	RevokeURL    string
}

var DefaultEndpoints = Endpoints{
	TokenInfoURL: "https://www.googleapis.com/oauth2/v1/tokeninfo",
	UserInfoURL:  "https://www.googleapis.com/oauth2/v1/userinfo",
	RevokeURL:    "https://accounts.google.com/o/oauth2/revoke",
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides the discovered OAuth endpoint when set.
	Endpoint   oauth2.Endpoint
	Endpoints  Endpoints
	HTTPClient *http.Client
}

type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	endpoints   Endpoints
	client      *http.Client
}

// New initializes the provider using OIDC discovery against Google.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	oidcProvider, err := oidc.NewProvider(oidc.ClientContext(ctx, client), issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = oidcProvider.Endpoint()
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	return NewWithVerifier(cfg, verifier)
}

// NewWithVerifier builds the provider around an existing ID token verifier.
func NewWithVerifier(cfg Config, verifier *oidc.IDTokenVerifier) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google oauth config missing required fields")
	}
	if verifier == nil {
		return nil, errors.New("google oauth config missing verifier")
	}

	if cfg.RedirectURL == "" {
		cfg.RedirectURL = postmessage
	}
	if cfg.Endpoints == (Endpoints{}) {
		cfg.Endpoints = DefaultEndpoints
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     cfg.Endpoint,
			Scopes: []string{
				oidc.ScopeOpenID,
				"profile",
				"email",
			},
		},
		verifier:  verifier,
		endpoints: cfg.Endpoints,
		client:    cfg.HTTPClient,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) ClientID() string {
	return p.oauthConfig.ClientID
}

func (p *Provider) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.client)
}

// Exchange upgrades a one-time authorization code, verifies the ID token and
// cross-checks the access token against the token info endpoint.
func (p *Provider) Exchange(ctx context.Context, code string) (*auth.Grant, error) {
	ctx = p.withClient(ctx)

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: google token exchange: %v", auth.ErrExternalAuth, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: google did not return id_token", auth.ErrExternalAuth)
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: google id_token verification: %v", auth.ErrExternalAuth, err)
	}
	if idToken.Subject == "" {
		return nil, fmt.Errorf("%w: google id_token missing subject", auth.ErrExternalAuth)
	}

	info, err := p.tokenInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	if info.Error != "" {
		return nil, auth.Reject(auth.ErrTokenInfo, info.Error)
	}
	if info.UserID != idToken.Subject {
		return nil, auth.Reject(auth.ErrExternalAuth, "Token's user ID doesn't match given user ID.")
	}
	if info.IssuedTo != p.oauthConfig.ClientID {
		return nil, auth.Reject(auth.ErrExternalAuth, "Token's client ID does not match app's.")
	}

	logger.Info("google token verified", map[string]any{
		"issuer":      idToken.Issuer,
		"audience":    idToken.Audience,
		"expiry_unix": idToken.Expiry.Unix(),
	})

	return &auth.Grant{
		AccessToken: token.AccessToken,
		Subject:     idToken.Subject,
	}, nil
}

type tokenInfo struct {
	Error    string `json:"error"`
	UserID   string `json:"user_id"`
	IssuedTo string `json:"issued_to"`
}

func (p *Provider) tokenInfo(ctx context.Context, accessToken string) (*tokenInfo, error) {
	u := p.endpoints.TokenInfoURL + "?" + url.Values{"access_token": {accessToken}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: google token info: %v", auth.ErrExternalAuth, err)
	}
	defer resp.Body.Close()

	// token info answers 400 with an error body for bad tokens, so the
	// status code alone is not decisive
	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: google token info decode: %v", auth.ErrExternalAuth, err)
	}
	return &info, nil
}

// Profile reads the userinfo endpoint with the grant's bearer token.
func (p *Provider) Profile(ctx context.Context, grant *auth.Grant) (*auth.Identity, error) {
	client := oauth2.NewClient(p.withClient(ctx), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: grant.AccessToken,
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoints.UserInfoURL+"?alt=json", nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: google userinfo: %v", auth.ErrExternalAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: google userinfo status %d", auth.ErrExternalAuth, resp.StatusCode)
	}

	var data struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: google userinfo decode: %v", auth.ErrExternalAuth, err)
	}

	if data.Email == "" {
		return nil, fmt.Errorf("%w: google userinfo missing email", auth.ErrExternalAuth)
	}

	return &auth.Identity{
		Provider:       providerName,
		ProviderUserID: grant.Subject,
		Email:          data.Email,
		Name:           data.Name,
		Picture:        data.Picture,
	}, nil
}

// Revoke invalidates the access token. Anything but 200 is a failure.
func (p *Provider) Revoke(ctx context.Context, grant *auth.Grant) error {
	u := p.endpoints.RevokeURL + "?" + url.Values{"token": {grant.AccessToken}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrRevoke, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: google revoke status %d", auth.ErrRevoke, resp.StatusCode)
	}
	return nil
}
