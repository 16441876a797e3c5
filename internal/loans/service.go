// internal/loans/service.go
package loans

import "context"

// Service defines the interface for the loan ledger.
type Service interface {
	RequestLoan(ctx context.Context, equipmentID, borrower, role, loanDate string, requestedDays int) (*Loan, error)
	Decide(ctx context.Context, loanID, decision string) (*Loan, error)
	ReturnLoan(ctx context.Context, loanID, returnDate string) (*Loan, error)
	History(ctx context.Context, filter Filter) ([]*Loan, error)
}

// Decision values accepted by Decide.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)
