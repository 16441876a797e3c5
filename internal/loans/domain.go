// internal/loans/domain.go
package loans

import (
	"errors"
	"strings"
)

// Loan lifecycle states as stored in prestamos.csv. PENDIENTE may move to
// APROBADO or RECHAZADO; APROBADO may move to DEVUELTO. RECHAZADO and
// DEVUELTO are terminal.
const (
	StatusPending  = "PENDIENTE"
	StatusApproved = "APROBADO"
	StatusRejected = "RECHAZADO"
	StatusReturned = "DEVUELTO"
)

// Borrower roles and the lateness flag values of the table vocabulary.
const (
	RoleStudent    = "ESTUDIANTE"
	RoleInstructor = "INSTRUCTOR"
	RoleStaff      = "ADMINISTRATIVO"

	LateYes = "SI"
	LateNo  = "NO"
)

// roleMaxDays caps the authorized loan duration per borrower role. Adding a
// role is a data change here, not a new conditional.
var roleMaxDays = map[string]int{
	RoleStudent:    3,
	RoleInstructor: 7,
	RoleStaff:      10,
}

// MaxDays returns the duration cap for a role. Unknown roles get 0, which
// rejects every positive request.
func MaxDays(role string) int {
	return roleMaxDays[strings.ToUpper(role)]
}

var (
	ErrEquipmentNotFound    = errors.New("equipment not found")
	ErrEquipmentUnavailable = errors.New("equipment is not available")
	ErrActiveLoanExists     = errors.New("equipment has an unresolved loan")
	ErrInvalidDate          = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDays          = errors.New("requested days must be a positive number")
	ErrDaysExceedRoleCap    = errors.New("requested days exceed the role maximum")
	ErrNotFound             = errors.New("loan not found")
	ErrNotPending           = errors.New("loan is not pending")
	ErrNotApproved          = errors.New("loan is not approved")
	ErrReturnBeforeLoan     = errors.New("return date is before the loan date")
	ErrInvalidDecision      = errors.New("decision must be approve or reject")
)

// Loan links a borrower to one equipment item for an authorized number of
// days. Fields that are absent until the return (fecha_devolucion,
// dias_reales_usados, retraso) stay empty strings so the stored form round-
// trips exactly.
type Loan struct {
	ID             string `json:"prestamo_id"`
	EquipmentID    string `json:"equipo_id"`
	EquipmentName  string `json:"nombre_equipo"`
	Borrower       string `json:"usuario_prestatario"`
	Role           string `json:"tipo_usuario"`
	RequestDate    string `json:"fecha_solicitud"`
	LoanDate       string `json:"fecha_prestamo"`
	ReturnDate     string `json:"fecha_devolucion,omitempty"`
	AuthorizedDays int    `json:"dias_autorizados"`
	ActualDaysUsed string `json:"dias_reales_usados,omitempty"`
	Late           string `json:"retraso,omitempty"`
	Status         string `json:"estado"`
	Month          string `json:"mes"`
	Year           string `json:"anio"`
}

// Filter narrows a history query. Zero-value fields match everything.
type Filter struct {
	EquipmentID string
	Borrower    string
	Status      string
}

func (f Filter) matches(l *Loan) bool {
	if f.EquipmentID != "" && l.EquipmentID != f.EquipmentID {
		return false
	}
	if f.Borrower != "" && l.Borrower != f.Borrower {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	return true
}
