package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// User identifies the authenticated account at the auth service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// oauthConfig returns the oauth2.Config for the service's token endpoint.
func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID: c.apiKey,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/auth/v1/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// SignIn exchanges email/password credentials for a token pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (*oauth2.Token, error) {
	tok, err := c.oauthConfig().PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in failed: %w", err)
	}
	return tok, nil
}

// CurrentUser resolves the account behind the request's bearer token.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, &u); err != nil {
		return User{}, err
	}
	if u.ID == "" {
		return User{}, ErrUnauthorized
	}
	return u, nil
}

// tokenFilePath returns the path of the stored token file under dataDir.
func tokenFilePath(dataDir string) string {
	return filepath.Join(dataDir, "auth", "tokens.json")
}

// LoadToken loads a previously saved token from dataDir, or nil when none
// has been stored yet.
func LoadToken(dataDir string) (*oauth2.Token, error) {
	path := tokenFilePath(dataDir)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// SaveToken persists a token under dataDir. The write is atomic: temp file
// then rename.
func SaveToken(dataDir string, tok *oauth2.Token) error {
	path := tokenFilePath(dataDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// CurrentToken returns a valid access token for the stored session,
// refreshing and re-saving it when expired. It fails when no session is
// stored; callers should direct the user to sign in first.
func (c *Client) CurrentToken(ctx context.Context, dataDir string) (*oauth2.Token, error) {
	tok, err := LoadToken(dataDir)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, fmt.Errorf("no stored session: sign in first")
	}
	if tok.Valid() {
		return tok, nil
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("session expired: sign in again")
	}

	refreshed, err := c.oauthConfig().TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing session: %w", err)
	}
	if err := SaveToken(dataDir, refreshed); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save refreshed token: %v\n", err)
	}
	return refreshed, nil
}
