package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/avstrong/campusnest/internal/rental"
)

var (
	ErrNoTransaction       = errors.New("write outside of a transaction")
	ErrTransactionFinished = errors.New("transaction already committed or rolled back")
)

type trxKey struct{}

// transaction stages writes until commit. Nothing it holds is visible to
// readers before then.
type transaction struct {
	id                        string
	serial                    bool
	roomModifications         map[string]*rental.Room
	bookingModifications      map[string]*rental.Booking
	idempotencyModifications  map[string]string
	messModifications         map[string]*rental.Mess
	subscriptionModifications map[string]*rental.Subscription
}

func newTransaction(id string, serial bool) *transaction {
	return &transaction{
		id:                        id,
		serial:                    serial,
		roomModifications:         make(map[string]*rental.Room),
		bookingModifications:      make(map[string]*rental.Booking),
		idempotencyModifications:  make(map[string]string),
		messModifications:         make(map[string]*rental.Mess),
		subscriptionModifications: make(map[string]*rental.Subscription),
	}
}

// trx resolves the transaction bound to ctx. db.mu must be held.
func (db *DB) trx(ctx context.Context) (*transaction, error) {
	trxID, _ := ctx.Value(trxKey{}).(string)
	if trxID == "" {
		return nil, ErrNoTransaction
	}

	trx, exists := db.transactions[trxID]
	if !exists {
		return nil, fmt.Errorf("%s: %w", trxID, ErrTransactionFinished)
	}

	return trx, nil
}

// finish forgets trx and releases the serial lock it may hold. db.mu must be held.
func (db *DB) finish(trx *transaction) {
	delete(db.transactions, trx.id)

	if trx.serial {
		db.serialMu.Unlock()
	}
}
