package adapter

import "context"

// IdentityProvider turns a token issued by the external auth provider into
// a stable, opaque subject id (an email address in practice).
type IdentityProvider interface {
	Verify(ctx context.Context, idToken string) (subjectID string, err error)
}
