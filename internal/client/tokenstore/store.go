// Package tokenstore persists the single bearer credential of the client.
//
// The store is the only place a credential lives between runs. It tracks no
// expiry: a stale token is discovered when the backend rejects it. Writes
// come from the session manager only; the API client only reads.
package tokenstore

import (
	"context"

	"github.com/dmitrijs2005/resumecli/internal/client/models"
)

// Fixed keys in the metadata table.
const (
	keyAccessToken = "access_token"
	keyTokenType   = "token_type"
)

// Store is durable storage of one credential.
//
// Load returns ok=false when no credential is stored. Clear is idempotent.
type Store interface {
	Save(ctx context.Context, cred models.Credential) error
	Load(ctx context.Context) (cred models.Credential, ok bool, err error)
	Clear(ctx context.Context) error
}
