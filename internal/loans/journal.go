// internal/loans/journal.go
package loans

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Lifecycle event types recorded in the journal.
const (
	EventLoanRequested = "LoanRequested"
	EventLoanApproved  = "LoanApproved"
	EventLoanRejected  = "LoanRejected"
	EventLoanReturned  = "LoanReturned"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Journal is an append-only JSON-lines audit trail of committed loan
// transitions. The tables remain the source of truth; a journal write
// failure is logged and never fails the operation that produced it.
type Journal struct {
	mu   sync.Mutex
	path string
}

func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Entry is one recorded transition.
type Entry struct {
	Type        string    `json:"type"`
	LoanID      string    `json:"prestamo_id"`
	EquipmentID string    `json:"equipo_id"`
	Borrower    string    `json:"usuario_prestatario"`
	Status      string    `json:"estado"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Append writes one entry for a committed transition. Safe on a nil journal.
func (j *Journal) Append(ctx context.Context, eventType string, loan *Loan) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := Entry{
		Type:        eventType,
		LoanID:      loan.ID,
		EquipmentID: loan.EquipmentID,
		Borrower:    loan.Borrower,
		Status:      loan.Status,
		RecordedAt:  time.Now().UTC(),
	}
	data, err := jsonCodec.Marshal(entry)
	if err != nil {
		log.Printf("journal: failed to marshal %s for %s: %v", eventType, loan.ID, err)
		return
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("journal: failed to open %s: %v", j.path, err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("journal: failed to append to %s: %v", j.path, err)
	}
}

// Entries reads the whole journal back, oldest first.
func (j *Journal) Entries() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, line := range splitLines(data) {
		var e Entry
		if err := jsonCodec.Unmarshal(line, &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
