// Package events carries ledger entry notifications over AMQP between
// the web server and the export worker.
package events

import (
	"encoding/json"
	"time"

	"housefund/internal/core"
)

const (
	KindCredit = "credit"
	KindDebit  = "debit"
)

// LedgerEntryMessage announces a newly appended ledger entry. Label is
// the credit source or the debit category depending on Kind. The worker
// re-reads the full ledger from the store, so the message only needs to
// identify what changed.
type LedgerEntryMessage struct {
	Username    string    `json:"username"`
	Kind        string    `json:"kind"`
	Label       string    `json:"label"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	RecordedAt  string    `json:"recorded_at"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewCreditMessage(username string, c core.Credit) *LedgerEntryMessage {
	return &LedgerEntryMessage{
		Username:    username,
		Kind:        KindCredit,
		Label:       c.Source,
		AmountCents: c.Amount.Cents,
		Description: c.Description,
		RecordedAt:  c.Date.Format(core.TimeLayout),
		Timestamp:   time.Now(),
	}
}

func NewDebitMessage(username string, d core.Debit) *LedgerEntryMessage {
	return &LedgerEntryMessage{
		Username:    username,
		Kind:        KindDebit,
		Label:       string(d.Category),
		AmountCents: d.Amount.Cents,
		Description: d.Description,
		RecordedAt:  d.Date.Format(core.TimeLayout),
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEntryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEntryMessageFromJSON creates a message from JSON bytes
func LedgerEntryMessageFromJSON(data []byte) (*LedgerEntryMessage, error) {
	var msg LedgerEntryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
