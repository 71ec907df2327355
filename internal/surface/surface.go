package surface

import (
	"context"

	"github.com/vextm/tm-bridge/internal/domain/field"
)

// ControlSurface is the boundary the engine polls and commands through. The
// implementation talks to whatever actually drives the Tournament Manager UI;
// the engine treats it as slow and unreliable.
type ControlSurface interface {
	// Fetch returns the current observable snapshot of a field set.
	Fetch(ctx context.Context, fieldID string) (field.Snapshot, error)
	// Invoke issues a command against a field set. A *field.CommandRejectedError
	// means the surface refused it; any other error means issuance could not
	// be completed.
	Invoke(ctx context.Context, fieldID string, kind field.CommandKind, params field.CommandParams) error
}
