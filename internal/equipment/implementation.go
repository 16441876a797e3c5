// internal/equipment/implementation.go
package equipment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"techlab/internal/flatfile"
)

// TableFields is the fixed column order of equipos.csv.
var TableFields = []string{
	"equipo_id", "nombre_equipo", "categoria", "estado_actual", "fecha_registro", "descripcion",
}

// service implements the Service interface over a flatfile table. The table
// is read in full, mutated in memory and written back in full under a single
// mutex, so each operation is one whole-table transaction.
type service struct {
	mu    sync.Mutex
	table *flatfile.Table
}

// NewService creates an equipment registry backed by the given table.
func NewService(table *flatfile.Table) Service {
	return &service{table: table}
}

// Register adds a new equipment record. The caller assigns the id; a
// duplicate id fails without touching the table. New records start available
// with the registration date set to today.
func (s *service) Register(ctx context.Context, id, name, category, description string) (*Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment: %w", err)
	}
	for _, rec := range records {
		if rec["equipo_id"] == id {
			return nil, ErrDuplicateID
		}
	}

	eq := &Equipment{
		ID:           id,
		Name:         name,
		Category:     category,
		Status:       StatusAvailable,
		RegisteredAt: time.Now().Format(DateLayout),
		Description:  description,
	}
	records = append(records, toRecord(eq))
	if err := s.table.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to save equipment: %w", err)
	}
	return eq, nil
}

// List returns all equipment in insertion order.
func (s *service) List(ctx context.Context) ([]*Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment: %w", err)
	}
	items := make([]*Equipment, 0, len(records))
	for _, rec := range records {
		items = append(items, fromRecord(rec))
	}
	return items, nil
}

// Find looks up one equipment record by id.
func (s *service) Find(ctx context.Context, id string) (*Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment: %w", err)
	}
	for _, rec := range records {
		if rec["equipo_id"] == id {
			return fromRecord(rec), nil
		}
	}
	return nil, ErrNotFound
}

// SetStatus overwrites the stored availability state of the equipment.
func (s *service) SetStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to load equipment: %w", err)
	}
	found := false
	for _, rec := range records {
		if rec["equipo_id"] == id {
			rec["estado_actual"] = status
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	if err := s.table.WriteAll(records); err != nil {
		return fmt.Errorf("failed to save equipment: %w", err)
	}
	return nil
}

func toRecord(eq *Equipment) flatfile.Record {
	return flatfile.Record{
		"equipo_id":      eq.ID,
		"nombre_equipo":  eq.Name,
		"categoria":      eq.Category,
		"estado_actual":  eq.Status,
		"fecha_registro": eq.RegisteredAt,
		"descripcion":    eq.Description,
	}
}

func fromRecord(rec flatfile.Record) *Equipment {
	return &Equipment{
		ID:           rec["equipo_id"],
		Name:         rec["nombre_equipo"],
		Category:     rec["categoria"],
		Status:       rec["estado_actual"],
		RegisteredAt: rec["fecha_registro"],
		Description:  rec["descripcion"],
	}
}
