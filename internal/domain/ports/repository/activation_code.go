package repository

import "context"

// AccessCodeRepository is the port for the persisted set of ordinary access codes.
// It is read once at process start; the running service never writes to it.
type AccessCodeRepository interface {
	// ListCodes returns every stored code, already normalized.
	ListCodes(ctx context.Context, tx Tx) ([]string, error)
	// SaveCodes inserts codes, ignoring ones that already exist. Returns the number inserted.
	SaveCodes(ctx context.Context, tx Tx, codes []string) (int, error)
}
