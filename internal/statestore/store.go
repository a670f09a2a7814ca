// Package statestore holds the ledger snapshot behind a small get/set
// surface. Variants are constructed explicitly; the caller picks the
// in-memory or redis-backed implementation at wiring time.
package statestore

import (
	"context"

	"github.com/consignd/commerce-backend/internal/commerce"
	pkgerrors "github.com/consignd/commerce-backend/pkg/errors"
)

// ErrNotInitialized is returned by Get before the ledger has been
// written for the first time. The reservation core treats it as a
// precondition fault, never an empty ledger.
var ErrNotInitialized = pkgerrors.New(pkgerrors.CodePrecondition, "ledger not initialized")

// Store persists a single ledger key's snapshot. Implementations must
// make each Get/Set pair issued under the caller's serialization appear
// atomic with respect to other transitions on the same key.
type Store interface {
	Get(ctx context.Context) (*commerce.Snapshot, error)
	Set(ctx context.Context, snapshot *commerce.Snapshot) error
	Shutdown(ctx context.Context) error
}
