package loans

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"techlab/internal/equipment"
	"techlab/internal/flatfile"
)

type fixture struct {
	equipment equipment.Service
	loans     Service
	journal   *Journal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	eqTable := flatfile.NewTable(filepath.Join(dir, "equipos.csv"), equipment.TableFields)
	loanTable := flatfile.NewTable(filepath.Join(dir, "prestamos.csv"), TableFields)
	journal := NewJournal(filepath.Join(dir, "prestamos_journal.jsonl"))

	eq := equipment.NewService(eqTable)
	return &fixture{
		equipment: eq,
		loans:     NewService(loanTable, eq, journal),
		journal:   journal,
	}
}

func (f *fixture) register(t *testing.T, id, name string) {
	t.Helper()
	_, err := f.equipment.Register(context.Background(), id, name, "drones", "")
	require.NoError(t, err)
}

func TestRequestLoanExceedsRoleCap(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")

	_, err := f.loans.RequestLoan(context.Background(), "E01", "Ana", RoleStudent, "2025-01-10", 5)
	assert.ErrorIs(t, err, ErrDaysExceedRoleCap)

	eq, err := f.equipment.Find(context.Background(), "E01")
	require.NoError(t, err)
	assert.Equal(t, equipment.StatusAvailable, eq.Status)
}

func TestRequestLoanPendingKeepsEquipmentAvailable(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")
	ctx := context.Background()

	loan, err := f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 3)
	require.NoError(t, err)

	assert.Equal(t, "P0001", loan.ID)
	assert.Equal(t, StatusPending, loan.Status)
	assert.Equal(t, "Drone", loan.EquipmentName)
	assert.Equal(t, "01", loan.Month)
	assert.Equal(t, "2025", loan.Year)
	assert.Equal(t, time.Now().Format(equipment.DateLayout), loan.RequestDate)

	eq, err := f.equipment.Find(ctx, "E01")
	require.NoError(t, err)
	assert.Equal(t, equipment.StatusAvailable, eq.Status)
}

func TestRequestLoanValidation(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")
	ctx := context.Background()

	_, err := f.loans.RequestLoan(ctx, "E99", "Ana", RoleStudent, "2025-01-10", 3)
	assert.ErrorIs(t, err, ErrEquipmentNotFound)

	_, err = f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "10/01/2025", 3)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 0)
	assert.ErrorIs(t, err, ErrInvalidDays)

	// Unknown roles carry a cap of zero, so any positive request fails.
	_, err = f.loans.RequestLoan(ctx, "E01", "Ana", "VISITANTE", "2025-01-10", 1)
	assert.ErrorIs(t, err, ErrDaysExceedRoleCap)

	history, err := f.loans.History(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, history, "failed requests must not be recorded")
}

func TestApproveFlipsEquipmentAndBlocksNewRequests(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")
	ctx := context.Background()

	_, err := f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 3)
	require.NoError(t, err)

	loan, err := f.loans.Decide(ctx, "P0001", DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, loan.Status)

	eq, err := f.equipment.Find(ctx, "E01")
	require.NoError(t, err)
	assert.Equal(t, equipment.StatusLoaned, eq.Status)

	_, err = f.loans.RequestLoan(ctx, "E01", "Luis", RoleInstructor, "2025-01-12", 5)
	assert.ErrorIs(t, err, ErrEquipmentUnavailable)
}

func TestPendingLoanBlocksSecondRequest(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")
	ctx := context.Background()

	_, err := f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 3)
	require.NoError(t, err)

	// Equipment is still DISPONIBLE while the loan is pending, so the guard
	// that fires is the active-loan scan.
	_, err = f.loans.RequestLoan(ctx, "E01", "Luis", RoleInstructor, "2025-01-12", 5)
	assert.ErrorIs(t, err, ErrActiveLoanExists)
}

func TestRejectLeavesEquipmentAvailable(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")
	ctx := context.Background()

	_, err := f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 3)
	require.NoError(t, err)

	loan, err := f.loans.Decide(ctx, "P0001", DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, loan.Status)

	eq, err := f.equipment.Find(ctx, "E01")
	require.NoError(t, err)
	assert.Equal(t, equipment.StatusAvailable, eq.Status)

	// Rejection frees the equipment for a new request.
	_, err = f.loans.RequestLoan(ctx, "E01", "Luis", RoleInstructor, "2025-01-12", 5)
	require.NoError(t, err)
}

func TestDecideErrors(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")
	ctx := context.Background()

	_, err := f.loans.Decide(ctx, "P0001", DecisionApprove)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 3)
	require.NoError(t, err)

	_, err = f.loans.Decide(ctx, "P0001", "maybe")
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = f.loans.Decide(ctx, "P0001", DecisionReject)
	require.NoError(t, err)

	// Terminal states never transition again.
	_, err = f.loans.Decide(ctx, "P0001", DecisionApprove)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestReturnLateAndRestoreAvailability(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")
	ctx := context.Background()

	_, err := f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 3)
	require.NoError(t, err)
	_, err = f.loans.Decide(ctx, "P0001", DecisionApprove)
	require.NoError(t, err)

	loan, err := f.loans.ReturnLoan(ctx, "P0001", "2025-01-14")
	require.NoError(t, err)

	assert.Equal(t, StatusReturned, loan.Status)
	assert.Equal(t, "4", loan.ActualDaysUsed)
	assert.Equal(t, 3, loan.AuthorizedDays)
	assert.Equal(t, LateYes, loan.Late)
	assert.Equal(t, "2025-01-14", loan.ReturnDate)

	eq, err := f.equipment.Find(ctx, "E01")
	require.NoError(t, err)
	assert.Equal(t, equipment.StatusAvailable, eq.Status)
}

func TestReturnOnTimeBoundary(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")
	ctx := context.Background()

	_, err := f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 3)
	require.NoError(t, err)
	_, err = f.loans.Decide(ctx, "P0001", DecisionApprove)
	require.NoError(t, err)

	// Exactly the authorized days is on time.
	loan, err := f.loans.ReturnLoan(ctx, "P0001", "2025-01-13")
	require.NoError(t, err)
	assert.Equal(t, "3", loan.ActualDaysUsed)
	assert.Equal(t, LateNo, loan.Late)
}

func TestReturnErrors(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")
	ctx := context.Background()

	_, err := f.loans.ReturnLoan(ctx, "P0001", "2025-01-14")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 3)
	require.NoError(t, err)

	// Pending loans cannot be returned.
	_, err = f.loans.ReturnLoan(ctx, "P0001", "2025-01-14")
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = f.loans.Decide(ctx, "P0001", DecisionApprove)
	require.NoError(t, err)

	_, err = f.loans.ReturnLoan(ctx, "P0001", "14-01-2025")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = f.loans.ReturnLoan(ctx, "P0001", "2025-01-09")
	assert.ErrorIs(t, err, ErrReturnBeforeLoan)

	// The failed attempts left the loan approved and the equipment loaned.
	eq, err := f.equipment.Find(ctx, "E01")
	require.NoError(t, err)
	assert.Equal(t, equipment.StatusLoaned, eq.Status)
}

func TestHistoryFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "E01", "Drone")
	f.register(t, "E02", "Laptop")

	_, err := f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 3)
	require.NoError(t, err)
	_, err = f.loans.RequestLoan(ctx, "E02", "Luis", RoleInstructor, "2025-01-11", 7)
	require.NoError(t, err)
	_, err = f.loans.Decide(ctx, "P0002", DecisionApprove)
	require.NoError(t, err)

	byEquipment, err := f.loans.History(ctx, Filter{EquipmentID: "E01"})
	require.NoError(t, err)
	require.Len(t, byEquipment, 1)
	assert.Equal(t, "Ana", byEquipment[0].Borrower)

	byBorrower, err := f.loans.History(ctx, Filter{Borrower: "Luis"})
	require.NoError(t, err)
	require.Len(t, byBorrower, 1)
	assert.Equal(t, "E02", byBorrower[0].EquipmentID)

	pending, err := f.loans.History(ctx, Filter{Status: StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "P0001", pending[0].ID)

	none, err := f.loans.History(ctx, Filter{Borrower: "Nadie"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournalRecordsLifecycle(t *testing.T) {
	f := newFixture(t)
	f.register(t, "E01", "Drone")
	ctx := context.Background()

	_, err := f.loans.RequestLoan(ctx, "E01", "Ana", RoleStudent, "2025-01-10", 3)
	require.NoError(t, err)
	_, err = f.loans.Decide(ctx, "P0001", DecisionApprove)
	require.NoError(t, err)
	_, err = f.loans.ReturnLoan(ctx, "P0001", "2025-01-12")
	require.NoError(t, err)

	entries, err := f.journal.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, EventLoanRequested, entries[0].Type)
	assert.Equal(t, EventLoanApproved, entries[1].Type)
	assert.Equal(t, EventLoanReturned, entries[2].Type)
	assert.Equal(t, "P0001", entries[2].LoanID)
}

// Loan ids are assigned strictly in creation order as P + 4-digit ordinals.
func TestLoanIDMonotonicity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		start, err := f.loans.History(ctx, Filter{})
		if err != nil {
			rt.Fatalf("history: %v", err)
		}

		for i := 0; i < n; i++ {
			seq := len(start) + i + 1
			id := fmt.Sprintf("E%d", seq)
			if _, err := f.equipment.Register(ctx, id, "Item", "tools", ""); err != nil {
				rt.Fatalf("register: %v", err)
			}
			loan, err := f.loans.RequestLoan(ctx, id, "Ana", RoleStaff, "2025-03-01", 10)
			if err != nil {
				rt.Fatalf("request: %v", err)
			}
			want := fmt.Sprintf("P%04d", seq)
			if loan.ID != want {
				rt.Fatalf("loan %d: got id %s, want %s", seq, loan.ID, want)
			}
		}
	})
}

// Lateness is strict: usage equal to the cap is on time, one more day is not.
func TestLatenessBoundaryProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dir, err := os.MkdirTemp("", "loans-rapid-")
		if err != nil {
			rt.Fatalf("tempdir: %v", err)
		}
		defer os.RemoveAll(dir)

		eqTable := flatfile.NewTable(filepath.Join(dir, "equipos.csv"), equipment.TableFields)
		loanTable := flatfile.NewTable(filepath.Join(dir, "prestamos.csv"), TableFields)
		eq := equipment.NewService(eqTable)
		f := &fixture{equipment: eq, loans: NewService(loanTable, eq, nil)}
		ctx := context.Background()

		authorized := rapid.IntRange(1, 10).Draw(rt, "authorized")
		used := rapid.IntRange(0, 20).Draw(rt, "used")
		role := RoleStaff
		if authorized <= 3 {
			role = RoleStudent
		} else if authorized <= 7 {
			role = RoleInstructor
		}

		if _, err := f.equipment.Register(ctx, "E01", "Drone", "drones", ""); err != nil {
			rt.Fatalf("register: %v", err)
		}
		if _, err := f.loans.RequestLoan(ctx, "E01", "Ana", role, "2025-01-10", authorized); err != nil {
			rt.Fatalf("request: %v", err)
		}
		if _, err := f.loans.Decide(ctx, "P0001", DecisionApprove); err != nil {
			rt.Fatalf("approve: %v", err)
		}

		returnDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC).
			AddDate(0, 0, used).Format(equipment.DateLayout)
		loan, err := f.loans.ReturnLoan(ctx, "P0001", returnDate)
		if err != nil {
			rt.Fatalf("return: %v", err)
		}

		wantLate := LateNo
		if used > authorized {
			wantLate = LateYes
		}
		if loan.Late != wantLate {
			rt.Fatalf("used=%d authorized=%d: got late=%s, want %s", used, authorized, loan.Late, wantLate)
		}
	})
}
