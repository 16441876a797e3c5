// internal/loans/implementation.go
package loans

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"techlab/internal/equipment"
	"techlab/internal/flatfile"
)

// TableFields is the fixed column order of prestamos.csv.
var TableFields = []string{
	"prestamo_id", "equipo_id", "nombre_equipo", "usuario_prestatario",
	"tipo_usuario", "fecha_solicitud", "fecha_prestamo", "fecha_devolucion",
	"dias_autorizados", "dias_reales_usados", "retraso", "estado", "mes", "anio",
}

// service implements the Service interface. The loan table is guarded by its
// own mutex across each load-mutate-save span; calls into the equipment
// registry happen while that lock is held, and the registry locks its own
// store, so the lock order is always loans then equipment.
type service struct {
	mu        sync.Mutex
	table     *flatfile.Table
	equipment equipment.Service
	journal   *Journal
}

// NewService creates a loan ledger over the given table. The journal may be
// nil to disable the audit trail.
func NewService(table *flatfile.Table, eq equipment.Service, journal *Journal) Service {
	return &service{table: table, equipment: eq, journal: journal}
}

// RequestLoan validates a loan request and records it as pending. Equipment
// availability is not changed here; only an approval flips it.
func (s *service) RequestLoan(ctx context.Context, equipmentID, borrower, role, loanDate string, requestedDays int) (*Loan, error) {
	eq, err := s.equipment.Find(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, equipment.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}
	if eq.Status != equipment.StatusAvailable {
		return nil, ErrEquipmentUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}
	for _, rec := range records {
		if rec["equipo_id"] == equipmentID &&
			(rec["estado"] == StatusPending || rec["estado"] == StatusApproved) {
			return nil, ErrActiveLoanExists
		}
	}

	parsedLoanDate, err := time.Parse(equipment.DateLayout, loanDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if requestedDays <= 0 {
		return nil, ErrInvalidDays
	}
	if requestedDays > MaxDays(role) {
		return nil, ErrDaysExceedRoleCap
	}

	loan := &Loan{
		ID:             fmt.Sprintf("P%04d", len(records)+1),
		EquipmentID:    equipmentID,
		EquipmentName:  eq.Name,
		Borrower:       borrower,
		Role:           role,
		RequestDate:    time.Now().Format(equipment.DateLayout),
		LoanDate:       loanDate,
		AuthorizedDays: requestedDays,
		Status:         StatusPending,
		Month:          fmt.Sprintf("%02d", int(parsedLoanDate.Month())),
		Year:           strconv.Itoa(parsedLoanDate.Year()),
	}

	records = append(records, toRecord(loan))
	if err := s.table.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to save loans: %w", err)
	}

	s.journal.Append(ctx, EventLoanRequested, loan)
	return loan, nil
}

// Decide approves or rejects a pending loan. Approval flips the equipment to
// loaned first; the loan record is only saved once that succeeds, so a loan
// can never read APROBADO while its equipment still reads DISPONIBLE.
// Rejection leaves the equipment untouched. Whether other pending requests
// exist for the same equipment is not re-checked here: the active-loan scan
// runs at request time only.
func (s *service) Decide(ctx context.Context, loanID, decision string) (*Loan, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, ErrInvalidDecision
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}
	idx, rec, err := findLoan(records, loanID, StatusPending, ErrNotPending)
	if err != nil {
		return nil, err
	}

	event := EventLoanRejected
	if decision == DecisionApprove {
		if err := s.equipment.SetStatus(ctx, rec["equipo_id"], equipment.StatusLoaned); err != nil {
			return nil, fmt.Errorf("failed to update equipment status: %w", err)
		}
		records[idx]["estado"] = StatusApproved
		event = EventLoanApproved
	} else {
		records[idx]["estado"] = StatusRejected
	}

	if err := s.table.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to save loans: %w", err)
	}

	loan := fromRecord(records[idx])
	s.journal.Append(ctx, event, loan)
	return loan, nil
}

// ReturnLoan closes an approved loan. Day usage is whole-calendar-day
// subtraction of the loan date from the return date; a use of exactly the
// authorized days is on time, one day more is late.
func (s *service) ReturnLoan(ctx context.Context, loanID, returnDate string) (*Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}
	idx, rec, err := findLoan(records, loanID, StatusApproved, ErrNotApproved)
	if err != nil {
		return nil, err
	}

	returned, err := time.Parse(equipment.DateLayout, returnDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	loaned, err := time.Parse(equipment.DateLayout, rec["fecha_prestamo"])
	if err != nil {
		return nil, ErrInvalidDate
	}
	daysUsed := int(returned.Sub(loaned) / (24 * time.Hour))
	if daysUsed < 0 {
		return nil, ErrReturnBeforeLoan
	}

	authorized, _ := strconv.Atoi(rec["dias_autorizados"])
	late := LateNo
	if daysUsed > authorized {
		late = LateYes
	}

	records[idx]["fecha_devolucion"] = returnDate
	records[idx]["dias_reales_usados"] = strconv.Itoa(daysUsed)
	records[idx]["retraso"] = late
	records[idx]["estado"] = StatusReturned

	if err := s.equipment.SetStatus(ctx, rec["equipo_id"], equipment.StatusAvailable); err != nil {
		return nil, fmt.Errorf("failed to update equipment status: %w", err)
	}
	if err := s.table.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to save loans: %w", err)
	}

	loan := fromRecord(records[idx])
	s.journal.Append(ctx, EventLoanReturned, loan)
	return loan, nil
}

// History returns every loan matching the filter, in storage order. No
// matches is an empty result, not an error.
func (s *service) History(ctx context.Context, filter Filter) ([]*Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}
	results := []*Loan{}
	for _, rec := range records {
		loan := fromRecord(rec)
		if filter.matches(loan) {
			results = append(results, loan)
		}
	}
	return results, nil
}

// findLoan locates a loan by id and checks it is in the wanted state. A loan
// that exists in another state is reported distinctly from one that does not
// exist at all.
func findLoan(records []flatfile.Record, loanID, wantStatus string, wrongState error) (int, flatfile.Record, error) {
	for i, rec := range records {
		if rec["prestamo_id"] == loanID {
			if rec["estado"] != wantStatus {
				return 0, nil, wrongState
			}
			return i, rec, nil
		}
	}
	return 0, nil, ErrNotFound
}

func toRecord(l *Loan) flatfile.Record {
	return flatfile.Record{
		"prestamo_id":         l.ID,
		"equipo_id":           l.EquipmentID,
		"nombre_equipo":       l.EquipmentName,
		"usuario_prestatario": l.Borrower,
		"tipo_usuario":        l.Role,
		"fecha_solicitud":     l.RequestDate,
		"fecha_prestamo":      l.LoanDate,
		"fecha_devolucion":    l.ReturnDate,
		"dias_autorizados":    strconv.Itoa(l.AuthorizedDays),
		"dias_reales_usados":  l.ActualDaysUsed,
		"retraso":             l.Late,
		"estado":              l.Status,
		"mes":                 l.Month,
		"anio":                l.Year,
	}
}

func fromRecord(rec flatfile.Record) *Loan {
	authorized, _ := strconv.Atoi(rec["dias_autorizados"])
	return &Loan{
		ID:             rec["prestamo_id"],
		EquipmentID:    rec["equipo_id"],
		EquipmentName:  rec["nombre_equipo"],
		Borrower:       rec["usuario_prestatario"],
		Role:           rec["tipo_usuario"],
		RequestDate:    rec["fecha_solicitud"],
		LoanDate:       rec["fecha_prestamo"],
		ReturnDate:     rec["fecha_devolucion"],
		AuthorizedDays: authorized,
		ActualDaysUsed: rec["dias_reales_usados"],
		Late:           rec["retraso"],
		Status:         rec["estado"],
		Month:          rec["mes"],
		Year:           rec["anio"],
	}
}
