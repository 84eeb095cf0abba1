package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/campusnest/internal/rental"
)

func seeded(t *testing.T) *DB {
	t.Helper()

	db := New(Config{L: nil})

	require.NoError(t, db.AddProperty(context.Background(), &rental.Property{
		ID:    "p-1",
		Rooms: []rental.Room{{ID: "r-1", TotalRooms: 3, AvailableRooms: 3}},
	}))
	require.NoError(t, db.AddMess(context.Background(), &rental.Mess{ID: "m-1", MaxSubscribers: 2}))

	return db
}

func TestDB_CommitAppliesStagedWrites(t *testing.T) {
	db := seeded(t)

	ctx, err := db.BeginTransaction(context.Background(), rental.LevelSerializable)
	require.NoError(t, err)

	require.NoError(t, db.SaveRooms(ctx, []*rental.Room{{ID: "r-1", PropertyID: "p-1", TotalRooms: 3, AvailableRooms: 1}}))
	require.NoError(t, db.SaveBooking(ctx, &rental.Booking{ID: "b-1", StudentID: "s-1"}, "s-1:key"))
	require.NoError(t, db.SaveMess(ctx, &rental.Mess{ID: "m-1", MaxSubscribers: 2, CurrentSubscribers: 1}))
	require.NoError(t, db.SaveSubscription(ctx, &rental.Subscription{ID: "sub-1", MessID: "m-1", SubscriberID: "s-1"}))

	_, err = db.GetBooking(ctx, "b-1")
	require.ErrorIs(t, err, rental.ErrRecordNotFound, "staged writes are invisible before commit")

	require.NoError(t, db.CommitTransaction(ctx))

	property, err := db.GetProperty(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, 1, property.Rooms[0].AvailableRooms)

	b, err := db.GetBookingByIdempotencyKey(context.Background(), "s-1:key")
	require.NoError(t, err)
	assert.Equal(t, "b-1", b.ID)

	mess, err := db.GetMess(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, 1, mess.CurrentSubscribers)

	_, err = db.FindSubscription(context.Background(), "m-1", "s-1")
	require.NoError(t, err)
}

func TestDB_RollbackDiscardsStagedWrites(t *testing.T) {
	db := seeded(t)

	ctx, err := db.BeginTransaction(context.Background(), rental.LevelReadCommitted)
	require.NoError(t, err)

	require.NoError(t, db.SaveMess(ctx, &rental.Mess{ID: "m-1", MaxSubscribers: 2, CurrentSubscribers: 2}))
	require.NoError(t, db.RollbackTransaction(ctx))

	mess, err := db.GetMess(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Zero(t, mess.CurrentSubscribers)

	require.ErrorIs(t, db.CommitTransaction(ctx), ErrTransactionFinished)
}

func TestDB_WritesNeedTransaction(t *testing.T) {
	db := seeded(t)

	err := db.SaveMess(context.Background(), &rental.Mess{ID: "m-1"})
	require.ErrorIs(t, err, ErrNoTransaction)
}

func TestDB_SerializableTransactionsExclude(t *testing.T) {
	db := seeded(t)

	first, err := db.BeginTransaction(context.Background(), rental.LevelSerializable)
	require.NoError(t, err)

	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		ctx, err := db.BeginTransaction(context.Background(), rental.LevelSerializable)
		assert.NoError(t, err)
		close(started)
		assert.NoError(t, db.RollbackTransaction(ctx))
	}()

	select {
	case <-started:
		t.Fatal("second serializable transaction started while the first was open")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, db.CommitTransaction(first))

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("second serializable transaction never started")
	}

	<-done
}

func TestDB_ReadsReturnCopies(t *testing.T) {
	db := seeded(t)

	property, err := db.GetProperty(context.Background(), "p-1")
	require.NoError(t, err)

	property.Rooms[0].AvailableRooms = 0

	again, err := db.GetProperty(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Rooms[0].AvailableRooms)
	assert.Equal(t, "p-1", again.Rooms[0].PropertyID)
}

func TestDB_Lists(t *testing.T) {
	db := seeded(t)

	require.NoError(t, db.AddProperty(context.Background(), &rental.Property{ID: "p-2"}))
	require.ErrorIs(t, db.AddProperty(context.Background(), &rental.Property{ID: "p-2"}), rental.ErrDuplicate)

	properties, err := db.ListProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, properties, 2)
	assert.Equal(t, "p-1", properties[0].ID)
	assert.Equal(t, "p-2", properties[1].ID)

	ctx, err := db.BeginTransaction(context.Background(), rental.LevelSerializable)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, db.SaveBooking(ctx, &rental.Booking{ID: "b-2", StudentID: "s-1", CreatedAt: now.Add(time.Second)}, ""))
	require.NoError(t, db.SaveBooking(ctx, &rental.Booking{ID: "b-1", StudentID: "s-1", CreatedAt: now}, ""))
	require.NoError(t, db.SaveBooking(ctx, &rental.Booking{ID: "b-3", StudentID: "s-2", CreatedAt: now}, ""))
	require.NoError(t, db.CommitTransaction(ctx))

	bookings, err := db.ListBookingsByStudent(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "b-1", bookings[0].ID)
	assert.Equal(t, "b-2", bookings[1].ID)
}
