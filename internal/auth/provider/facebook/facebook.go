package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"catalog-service/internal/auth"
	"catalog-service/internal/logger"

	"golang.org/x/oauth2"
	fb "golang.org/x/oauth2/facebook"
)

const (
	providerName = "facebook"
	apiVersion   = "v3.2"
)

type Config struct {
	ClientID     string
	ClientSecret string

	// GraphURL is the Graph API host, e.g. https://graph.facebook.com.
	// Empty uses the host of the oauth2 facebook endpoint.
	GraphURL   string
	HTTPClient *http.Client
}

// Provider signs users in with a short-lived token obtained by the Facebook
// JavaScript SDK. The token is upgraded server side and checked with
// debug_token before any profile data is trusted.
type Provider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	graphURL     string
	client       *http.Client
}

func New(cfg Config) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("facebook oauth config missing required fields")
	}

	tokenURL := fb.Endpoint.TokenURL
	graphURL := strings.TrimSuffix(tokenURL, "/oauth/access_token")
	if cfg.GraphURL != "" {
		graphURL = strings.TrimRight(cfg.GraphURL, "/") + "/" + apiVersion
		tokenURL = graphURL + "/oauth/access_token"
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &Provider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     tokenURL,
		graphURL:     graphURL,
		client:       client,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) ClientID() string {
	return p.clientID
}

// Exchange upgrades the short-lived user token to a long-lived one and
// confirms it was issued to this app.
func (p *Provider) Exchange(ctx context.Context, shortToken string) (*auth.Grant, error) {
	q := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {p.clientID},
		"client_secret":     {p.clientSecret},
		"fb_exchange_token": {shortToken},
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		Error       *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := p.getJSON(ctx, p.client, p.tokenURL+"?"+q.Encode(), &tok); err != nil {
		return nil, fmt.Errorf("%w: facebook token exchange: %v", auth.ErrExternalAuth, err)
	}
	if tok.Error != nil || tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: facebook token exchange returned no token", auth.ErrExternalAuth)
	}

	debug := url.Values{
		"input_token":  {tok.AccessToken},
		"access_token": {p.clientID + "|" + p.clientSecret},
	}

	var info struct {
		Data struct {
			AppID   string `json:"app_id"`
			UserID  string `json:"user_id"`
			IsValid bool   `json:"is_valid"`
		} `json:"data"`
	}
	if err := p.getJSON(ctx, p.client, p.graphURL+"/debug_token?"+debug.Encode(), &info); err != nil {
		return nil, fmt.Errorf("%w: facebook debug_token: %v", auth.ErrExternalAuth, err)
	}

	if !info.Data.IsValid {
		return nil, auth.Reject(auth.ErrExternalAuth, "Token is not valid.")
	}
	if info.Data.AppID != p.clientID {
		return nil, auth.Reject(auth.ErrExternalAuth, "Token's client ID does not match app's.")
	}

	logger.Info("facebook token verified", map[string]any{
		"app_id": info.Data.AppID,
	})

	return &auth.Grant{
		AccessToken: tok.AccessToken,
		Subject:     info.Data.UserID,
	}, nil
}

// Profile reads /me and the 200x200 picture edge.
func (p *Provider) Profile(ctx context.Context, grant *auth.Grant) (*auth.Identity, error) {
	client := p.bearer(ctx, grant)

	var me struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := p.getJSON(ctx, client, p.graphURL+"/me?fields=name,id,email", &me); err != nil {
		return nil, fmt.Errorf("%w: facebook /me: %v", auth.ErrExternalAuth, err)
	}
	if me.Email == "" {
		return nil, fmt.Errorf("%w: facebook profile missing email", auth.ErrExternalAuth)
	}
	if grant.Subject != "" && me.ID != grant.Subject {
		return nil, auth.Reject(auth.ErrExternalAuth, "Token's user ID doesn't match given user ID.")
	}

	var pic struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := p.getJSON(ctx, client, p.graphURL+"/me/picture?redirect=0&height=200&width=200", &pic); err != nil {
		return nil, fmt.Errorf("%w: facebook picture: %v", auth.ErrExternalAuth, err)
	}

	return &auth.Identity{
		Provider:       providerName,
		ProviderUserID: me.ID,
		Email:          me.Email,
		Name:           me.Name,
		Picture:        pic.Data.URL,
	}, nil
}

// Revoke removes the app's permissions for the user.
func (p *Provider) Revoke(ctx context.Context, grant *auth.Grant) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		p.graphURL+"/"+url.PathEscape(grant.Subject)+"/permissions", nil)
	if err != nil {
		return err
	}

	resp, err := p.bearer(ctx, grant).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrRevoke, err)
	}
	defer resp.Body.Close()

	var out struct {
		Success bool `json:"success"`
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: facebook revoke status %d", auth.ErrRevoke, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || !out.Success {
		return fmt.Errorf("%w: facebook revoke not acknowledged", auth.ErrRevoke)
	}
	return nil
}

func (p *Provider) bearer(ctx context.Context, grant *auth.Grant) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: grant.AccessToken,
	}))
}

func (p *Provider) getJSON(ctx context.Context, client *http.Client, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
