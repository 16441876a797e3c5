// internal/equipment/domain.go
package equipment

import "errors"

// Equipment availability states as stored in equipos.csv.
const (
	StatusAvailable = "DISPONIBLE"
	StatusLoaned    = "PRESTADO"
)

// DateLayout is the calendar-date form used across all tables.
const DateLayout = "2006-01-02"

var (
	// ErrDuplicateID is returned when registering an id that already exists.
	ErrDuplicateID = errors.New("equipment id already registered")
	// ErrNotFound is returned when no equipment has the requested id.
	ErrNotFound = errors.New("equipment not found")
)

// Equipment represents a trackable lab asset.
type Equipment struct {
	ID           string `json:"equipo_id"`
	Name         string `json:"nombre_equipo"`
	Category     string `json:"categoria"`
	Status       string `json:"estado_actual"`
	RegisteredAt string `json:"fecha_registro"`
	Description  string `json:"descripcion,omitempty"`
}
