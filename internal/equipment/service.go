// internal/equipment/service.go
package equipment

import "context"

// Service defines the interface for the equipment registry.
type Service interface {
	Register(ctx context.Context, id, name, category, description string) (*Equipment, error)
	List(ctx context.Context) ([]*Equipment, error)
	Find(ctx context.Context, id string) (*Equipment, error)
	// SetStatus overwrites the availability state of an equipment record. It
	// does not judge whether the transition is legal; the loan ledger owns
	// that rule.
	SetStatus(ctx context.Context, id, status string) error
}
