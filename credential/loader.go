// Package credential builds the service-account credential used to read the
// orders spreadsheet.
package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

// ScopeSpreadsheetsReadOnly grants read-only access to Google Sheets.
const ScopeSpreadsheetsReadOnly = "https://www.googleapis.com/auth/spreadsheets.readonly"

var (
	// ErrConfigMissing signals that the credential block is absent or incomplete.
	ErrConfigMissing = errors.New("credential: configuration missing")
	// ErrInvalidCredential signals that the block is complete but cannot be used.
	ErrInvalidCredential = errors.New("credential: invalid service account")
)

// MissingFieldsError lists the required fields absent from the credential block.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	if len(e.Fields) == 0 {
		return "credential: service account block not configured"
	}
	return fmt.Sprintf("credential: missing required fields: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrConfigMissing
}

// Credential is a service-account credential scoped for the spreadsheet API.
type Credential struct {
	account ServiceAccount
	config  *jwt.Config
}

// Load validates the block and builds a credential for the given scopes. When no
// scope is supplied the read-only spreadsheet scope is used. Load never touches
// the network; tokens are minted lazily by TokenSource.
func Load(sa ServiceAccount, scopes ...string) (*Credential, error) {
	if sa.IsZero() {
		return nil, &MissingFieldsError{}
	}
	if missing := sa.missingFields(); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	if len(scopes) == 0 {
		scopes = []string{ScopeSpreadsheetsReadOnly}
	}

	sa.PrivateKey = NormalizePrivateKey(sa.PrivateKey)

	data, err := json.Marshal(sa)
	if err != nil {
		return nil, fmt.Errorf("credential: encode key file: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	return &Credential{account: sa, config: cfg}, nil
}

// NormalizePrivateKey restores line breaks in a PEM key whose newlines were
// stored as the two-character sequence `\n`.
func NormalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

// ClientEmail returns the service account identity.
func (c *Credential) ClientEmail() string {
	return c.account.ClientEmail
}

// ProjectID returns the project that owns the service account.
func (c *Credential) ProjectID() string {
	return c.account.ProjectID
}

// Scopes returns the OAuth scopes the credential requests.
func (c *Credential) Scopes() []string {
	out := make([]string, len(c.config.Scopes))
	copy(out, c.config.Scopes)
	return out
}

// TokenSource returns a source that signs and exchanges a JWT on first use.
func (c *Credential) TokenSource(ctx context.Context) oauth2.TokenSource {
	return c.config.TokenSource(ctx)
}
