package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/avstrong/campusnest/internal/logger"
	"github.com/avstrong/campusnest/internal/rental"
)

type Config struct {
	L *logger.Logger
}

// DB keeps committed state in maps and stages writes per transaction.
// Reads always observe committed state. A SERIALIZABLE transaction holds the
// serial lock from begin until commit or rollback.
type DB struct {
	mu       sync.Mutex
	serialMu sync.Mutex
	l        *logger.Logger

	properties    map[string]*rental.Property
	propertyOrder []string
	bookings      map[string]*rental.Booking
	bookingKeys   map[string]string
	messes        map[string]*rental.Mess
	subscriptions map[string]*rental.Subscription
	transactions  map[string]*transaction
	nextTrxID     int64
}

func New(conf Config) *DB {
	l := conf.L
	if l == nil {
		l = logger.NewNop()
	}

	//nolint:exhaustruct
	return &DB{
		l:             l,
		properties:    make(map[string]*rental.Property),
		bookings:      make(map[string]*rental.Booking),
		bookingKeys:   make(map[string]string),
		messes:        make(map[string]*rental.Mess),
		subscriptions: make(map[string]*rental.Subscription),
		transactions:  make(map[string]*transaction),
	}
}

func roomKey(propertyID, roomID string) string {
	return propertyID + "_" + roomID
}

func subscriptionKey(messID, subscriberID string) string {
	return messID + "_" + subscriberID
}

func copyProperty(p *rental.Property) *rental.Property {
	c := *p
	c.Rooms = append([]rental.Room(nil), p.Rooms...)

	return &c
}

func copyMess(m *rental.Mess) *rental.Mess {
	c := *m
	c.Plans = append([]string(nil), m.Plans...)

	return &c
}

func copyBooking(b *rental.Booking) *rental.Booking {
	c := *b

	return &c
}

func (db *DB) BeginTransaction(ctx context.Context, level string) (context.Context, error) {
	serial := level == rental.LevelSerializable
	if serial {
		db.serialMu.Lock()
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	trxID := fmt.Sprintf("trx-%d", db.nextTrxID)
	db.nextTrxID++

	db.transactions[trxID] = newTransaction(trxID, serial)

	return context.WithValue(ctx, trxKey{}, trxID), nil
}

func (db *DB) CommitTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	defer db.finish(trx)

	targets := make(map[string]*rental.Room, len(trx.roomModifications))

	for key, room := range trx.roomModifications {
		property, ok := db.properties[room.PropertyID]
		if !ok {
			return fmt.Errorf("property %s of room %s: %w", room.PropertyID, room.ID, rental.ErrRecordNotFound)
		}

		target, ok := property.Room(room.ID)
		if !ok {
			return fmt.Errorf("room %s: %w", room.ID, rental.ErrRecordNotFound)
		}

		targets[key] = target
	}

	for key, room := range trx.roomModifications {
		*targets[key] = *room
	}

	for id, b := range trx.bookingModifications {
		db.bookings[id] = b
	}

	for key, bookingID := range trx.idempotencyModifications {
		db.bookingKeys[key] = bookingID
	}

	for id, m := range trx.messModifications {
		db.messes[id] = m
	}

	for key, s := range trx.subscriptionModifications {
		db.subscriptions[key] = s
	}

	db.l.LogDebug("Transaction %s has been committed", trx.id)

	return nil
}

// RollbackTransaction discards everything staged by the transaction.
func (db *DB) RollbackTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	db.finish(trx)

	return nil
}

func (db *DB) SaveRooms(ctx context.Context, rooms []*rental.Room) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	for _, room := range rooms {
		r := *room
		trx.roomModifications[roomKey(room.PropertyID, room.ID)] = &r
	}

	return nil
}

func (db *DB) SaveBooking(ctx context.Context, booking *rental.Booking, idempotencyKey string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	trx.bookingModifications[booking.ID] = copyBooking(booking)

	if idempotencyKey != "" {
		trx.idempotencyModifications[idempotencyKey] = booking.ID
	}

	return nil
}

func (db *DB) SaveMess(ctx context.Context, mess *rental.Mess) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	trx.messModifications[mess.ID] = copyMess(mess)

	return nil
}

func (db *DB) SaveSubscription(ctx context.Context, subscription *rental.Subscription) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	s := *subscription
	trx.subscriptionModifications[subscriptionKey(s.MessID, s.SubscriberID)] = &s

	return nil
}

// AddProperty stores a property outside of any transaction. Used for seeding.
func (db *DB) AddProperty(_ context.Context, property *rental.Property) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.properties[property.ID]; exists {
		return fmt.Errorf("property %s: %w", property.ID, rental.ErrDuplicate)
	}

	p := copyProperty(property)
	for i := range p.Rooms {
		p.Rooms[i].PropertyID = p.ID
	}

	db.properties[p.ID] = p
	db.propertyOrder = append(db.propertyOrder, p.ID)

	return nil
}

// AddMess stores a mess outside of any transaction. Used for seeding.
func (db *DB) AddMess(_ context.Context, mess *rental.Mess) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.messes[mess.ID]; exists {
		return fmt.Errorf("mess %s: %w", mess.ID, rental.ErrDuplicate)
	}

	db.messes[mess.ID] = copyMess(mess)

	return nil
}

func (db *DB) GetProperty(_ context.Context, id string) (*rental.Property, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	property, ok := db.properties[id]
	if !ok {
		return nil, rental.ErrRecordNotFound
	}

	return copyProperty(property), nil
}

func (db *DB) ListProperties(_ context.Context) ([]*rental.Property, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]*rental.Property, 0, len(db.propertyOrder))
	for _, id := range db.propertyOrder {
		result = append(result, copyProperty(db.properties[id]))
	}

	return result, nil
}

func (db *DB) GetBooking(_ context.Context, id string) (*rental.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	b, ok := db.bookings[id]
	if !ok {
		return nil, rental.ErrRecordNotFound
	}

	return copyBooking(b), nil
}

func (db *DB) GetBookingByIdempotencyKey(_ context.Context, key string) (*rental.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	bookingID, ok := db.bookingKeys[key]
	if !ok {
		return nil, rental.ErrRecordNotFound
	}

	return copyBooking(db.bookings[bookingID]), nil
}

func (db *DB) ListBookingsByStudent(_ context.Context, studentID string) ([]*rental.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []*rental.Booking

	for _, b := range db.bookings {
		if b.StudentID == studentID {
			result = append(result, copyBooking(b))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}

		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (db *DB) GetMess(_ context.Context, id string) (*rental.Mess, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	m, ok := db.messes[id]
	if !ok {
		return nil, rental.ErrRecordNotFound
	}

	return copyMess(m), nil
}

func (db *DB) FindSubscription(_ context.Context, messID, subscriberID string) (*rental.Subscription, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.subscriptions[subscriptionKey(messID, subscriberID)]
	if !ok {
		return nil, rental.ErrRecordNotFound
	}

	c := *s

	return &c, nil
}
