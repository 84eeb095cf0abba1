package rental

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avstrong/campusnest/internal/logger"
)

const (
	LevelReadCommitted = "READ COMMITTED"
	LevelSerializable  = "SERIALIZABLE"
)

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type storageReader interface {
	GetProperty(ctx context.Context, id string) (*Property, error)
	ListProperties(ctx context.Context) ([]*Property, error)
	GetBooking(ctx context.Context, id string) (*Booking, error)
	GetBookingByIdempotencyKey(ctx context.Context, key string) (*Booking, error)
	ListBookingsByStudent(ctx context.Context, studentID string) ([]*Booking, error)
	GetMess(ctx context.Context, id string) (*Mess, error)
	FindSubscription(ctx context.Context, messID, subscriberID string) (*Subscription, error)
}

type storageWriter interface {
	BeginTransaction(ctx context.Context, level string) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	SaveRooms(ctx context.Context, rooms []*Room) error
	SaveBooking(ctx context.Context, booking *Booking, idempotencyKey string) error
	SaveMess(ctx context.Context, mess *Mess) error
	SaveSubscription(ctx context.Context, subscription *Subscription) error
}

type storage interface {
	storageReader
	storageWriter
}

// PriceStrategy adds its share of the price to a booking.
type PriceStrategy interface {
	Apply(booking *Booking, property *Property) error
}

type pricer interface {
	Strategies(ctx context.Context, property *Property) ([]PriceStrategy, error)
}

type Manager struct {
	l           *logger.Logger
	storage     storage
	idGenerator idGenerator
	pricer      pricer
}

func New(l *logger.Logger, storage storage, idGenerator idGenerator, pricer pricer) *Manager {
	return &Manager{
		l:           l,
		storage:     storage,
		idGenerator: idGenerator,
		pricer:      pricer,
	}
}

func (b *BookInput) validate() error {
	inputErr := newInputError()

	if b.PropertyID == "" {
		inputErr.addError("propertyId", "provide propertyId")
	}

	if b.StudentID == "" {
		inputErr.addError("studentId", "provide studentId")
	}

	if b.StartDate.IsZero() {
		inputErr.addError("startDate", "provide startDate")
	}

	if b.EndDate.IsZero() {
		inputErr.addError("endDate", "provide endDate")
	}

	if !b.StartDate.IsZero() && !b.EndDate.IsZero() && !b.StartDate.Before(b.EndDate) {
		inputErr.addError("startDate", "startDate must be before endDate")
	}

	if b.RoomsCount < 1 {
		inputErr.addError("roomsCount", "roomsCount must be at least 1")
	}

	if b.MembersCount < 1 {
		inputErr.addError("membersCount", "membersCount must be at least 1")
	}

	if inputErr.fieldsCount() > 0 {
		return inputErr
	}

	return nil
}

func (b *BookInput) prepareDates() {
	b.StartDate = b.StartDate.UTC().Truncate(24 * time.Hour) //nolint:gomnd
	b.EndDate = b.EndDate.UTC().Truncate(24 * time.Hour)     //nolint:gomnd
}

func (s *SubscribeInput) validate() error {
	inputErr := newInputError()

	if s.MessID == "" {
		inputErr.addError("messId", "provide messId")
	}

	if s.SubscriberID == "" {
		inputErr.addError("subscriberId", "provide subscriberId")
	}

	if s.Plan == "" {
		inputErr.addError("plan", "provide plan")
	}

	if s.StartDate.IsZero() {
		inputErr.addError("startDate", "provide startDate")
	}

	if inputErr.fieldsCount() > 0 {
		return inputErr
	}

	return nil
}

// inTransaction runs fn inside a storage transaction and commits it unless fn
// fails or panics.
func (m *Manager) inTransaction(ctx context.Context, level string, fn func(ctx context.Context) error) (err error) {
	ctx, err = m.storage.BeginTransaction(ctx, level)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := m.storage.RollbackTransaction(ctx); rbErr != nil {
				m.l.LogErrorf("Could not rollback transaction after panic %v", p)
			}

			m.l.LogInfo("Transaction has been roll backed after panic")

			panic(p)
		}

		if err != nil {
			if rbErr := m.storage.RollbackTransaction(ctx); rbErr != nil {
				m.l.LogErrorf("Could not rollback transaction after error %v", rbErr.Error())
			}

			m.l.LogDebug("Transaction has been roll backed after error: %v", err)

			return
		}

		if err = m.storage.CommitTransaction(ctx); err != nil {
			err = fmt.Errorf("commit transaction: %w", err)
		}
	}()

	return fn(ctx)
}

func (m *Manager) price(ctx context.Context, booking *Booking, property *Property) error {
	if m.pricer == nil {
		return nil
	}

	strategies, err := m.pricer.Strategies(ctx, property)
	if err != nil {
		return fmt.Errorf("get price strategies for property %v: %w", property.ID, err)
	}

	for _, strategy := range strategies {
		if err := strategy.Apply(booking, property); err != nil {
			if errors.Is(err, ErrNoPrice) {
				inputErr := newInputError()
				inputErr.addError("roomId", "property has no monthly rent, a room must be selected")

				return inputErr
			}

			return fmt.Errorf("apply price strategy to booking: %w", err)
		}
	}

	return nil
}

func (m *Manager) checkRoom(input *BookInput, property *Property) error {
	if input.RoomID == "" {
		return nil
	}

	room, ok := property.Room(input.RoomID)
	if !ok {
		return fmt.Errorf("room %v of property %v: %w", input.RoomID, property.ID, ErrRecordNotFound)
	}

	if room.AvailableRooms < input.RoomsCount {
		capacityErr := NewCapacityError()
		capacityErr.AddUnavailableRoom(property.ID, room.ID, input.RoomsCount, room.AvailableRooms)

		return capacityErr
	}

	if room.MaxOccupancy > 0 && input.MembersCount > room.MaxOccupancy*input.RoomsCount {
		inputErr := newInputError()
		inputErr.addError("membersCount", fmt.Sprintf(
			"at most %d members fit in %d room(s)", room.MaxOccupancy*input.RoomsCount, input.RoomsCount,
		))

		return inputErr
	}

	return nil
}

func (m *Manager) hasPendingBooking(ctx context.Context, studentID, propertyID string) (bool, error) {
	bookings, err := m.storage.ListBookingsByStudent(ctx, studentID)
	if err != nil {
		return false, fmt.Errorf("list bookings of student %v: %w", studentID, err)
	}

	for _, b := range bookings {
		if b.PropertyID == propertyID && b.Status == StatusPending {
			return true, nil
		}
	}

	return false, nil
}

//nolint:funlen,cyclop // it's linear simple code
func (m *Manager) CreateBooking(ctx context.Context, input *BookInput) (_ *Booking, err error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	input.prepareDates()

	var scopedKey string
	if key, ok := IdempotencyKeyFromContext(ctx); ok && key != "" {
		scopedKey = input.StudentID + ":" + key
	}

	var booking *Booking

	err = m.inTransaction(ctx, LevelSerializable, func(ctx context.Context) error {
		if scopedKey != "" {
			existing, err := m.storage.GetBookingByIdempotencyKey(ctx, scopedKey)
			if err != nil && !errors.Is(err, ErrRecordNotFound) {
				return fmt.Errorf("get booking by idempotency key: %w", err)
			}

			if err == nil {
				booking = existing

				return nil
			}
		}

		property, err := m.storage.GetProperty(ctx, input.PropertyID)
		if err != nil {
			return fmt.Errorf("get property %v: %w", input.PropertyID, err)
		}

		if input.MealsSelected && !property.HasMess {
			inputErr := newInputError()
			inputErr.addError("mealsSelected", "property has no mess service")

			return inputErr
		}

		if err := m.checkRoom(input, property); err != nil {
			return err
		}

		pending, err := m.hasPendingBooking(ctx, input.StudentID, input.PropertyID)
		if err != nil {
			return err
		}

		if pending {
			return fmt.Errorf("student %v already has a pending booking for property %v: %w",
				input.StudentID, input.PropertyID, ErrDuplicate)
		}

		id, err := m.idGenerator.GetID(ctx)
		if err != nil {
			return ErrNextID
		}

		now := time.Now().UTC()

		//nolint:exhaustruct // price is set by strategies
		booking = &Booking{
			ID:            id,
			PropertyID:    input.PropertyID,
			RoomID:        input.RoomID,
			StudentID:     input.StudentID,
			StartDate:     input.StartDate,
			EndDate:       input.EndDate,
			MealsSelected: input.MealsSelected,
			RoomsCount:    input.RoomsCount,
			MembersCount:  input.MembersCount,
			Status:        StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := m.price(ctx, booking, property); err != nil {
			return err
		}

		if err := m.storage.SaveBooking(ctx, booking, scopedKey); err != nil {
			return fmt.Errorf("save booking to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (m *Manager) UpdateBookingStatus(
	ctx context.Context,
	bookingID, ownerID string,
	status BookingStatus,
) (_ *Booking, err error) {
	if !status.Valid() || status == StatusPending {
		inputErr := newInputError()
		inputErr.addError("status", "status must be approved or rejected")

		return nil, inputErr
	}

	var booking *Booking

	err = m.inTransaction(ctx, LevelSerializable, func(ctx context.Context) error {
		b, err := m.storage.GetBooking(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("get booking %v: %w", bookingID, err)
		}

		booking = b

		property, err := m.storage.GetProperty(ctx, booking.PropertyID)
		if err != nil {
			return fmt.Errorf("get property %v: %w", booking.PropertyID, err)
		}

		if property.OwnerID != ownerID {
			return fmt.Errorf("user %v does not own property %v: %w", ownerID, property.ID, ErrForbidden)
		}

		if booking.Status != StatusPending {
			return fmt.Errorf("booking %v is %v: %w", booking.ID, booking.Status, ErrStatus)
		}

		if status == StatusApproved && booking.RoomID != "" {
			room, ok := property.Room(booking.RoomID)
			if !ok {
				return fmt.Errorf("room %v of property %v: %w", booking.RoomID, property.ID, ErrLogic)
			}

			if room.AvailableRooms < booking.RoomsCount {
				capacityErr := NewCapacityError()
				capacityErr.AddUnavailableRoom(property.ID, room.ID, booking.RoomsCount, room.AvailableRooms)

				return capacityErr
			}

			room.AvailableRooms -= booking.RoomsCount

			if err := m.storage.SaveRooms(ctx, []*Room{room}); err != nil {
				return fmt.Errorf("save rooms to storage: %w", err)
			}
		}

		booking.Status = status
		booking.UpdatedAt = time.Now().UTC()

		if err := m.storage.SaveBooking(ctx, booking, ""); err != nil {
			return fmt.Errorf("save booking to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// Subscribe admits a subscriber to a mess while seats remain. The check and
// the increment run in one serializable transaction.
func (m *Manager) Subscribe(ctx context.Context, input *SubscribeInput) (_ *Subscription, err error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var subscription *Subscription

	err = m.inTransaction(ctx, LevelSerializable, func(ctx context.Context) error {
		mess, err := m.storage.GetMess(ctx, input.MessID)
		if err != nil {
			return fmt.Errorf("get mess %v: %w", input.MessID, err)
		}

		if !mess.OffersPlan(input.Plan) {
			inputErr := newInputError()
			inputErr.addError("plan", fmt.Sprintf("plan must be one of %v", mess.Plans))

			return inputErr
		}

		_, err = m.storage.FindSubscription(ctx, mess.ID, input.SubscriberID)
		if err == nil {
			return fmt.Errorf("user %v already subscribed to mess %v: %w", input.SubscriberID, mess.ID, ErrDuplicate)
		}

		if !errors.Is(err, ErrRecordNotFound) {
			return fmt.Errorf("find subscription: %w", err)
		}

		if mess.CurrentSubscribers >= mess.MaxSubscribers {
			capacityErr := NewCapacityError()
			capacityErr.AddFullMess(mess.ID, mess.MaxSubscribers)

			return capacityErr
		}

		id, err := m.idGenerator.GetID(ctx)
		if err != nil {
			return ErrNextID
		}

		subscription = &Subscription{
			ID:           id,
			SubscriberID: input.SubscriberID,
			MessID:       mess.ID,
			Plan:         input.Plan,
			StartDate:    input.StartDate.UTC(),
			CreatedAt:    time.Now().UTC(),
		}

		mess.CurrentSubscribers++

		if err := m.storage.SaveMess(ctx, mess); err != nil {
			return fmt.Errorf("save mess to storage: %w", err)
		}

		if err := m.storage.SaveSubscription(ctx, subscription); err != nil {
			return fmt.Errorf("save subscription to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return subscription, nil
}

func (m *Manager) GetProperty(ctx context.Context, id string) (*Property, error) {
	property, err := m.storage.GetProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get property %v: %w", id, err)
	}

	return property, nil
}

func (m *Manager) ListProperties(ctx context.Context) ([]*Property, error) {
	properties, err := m.storage.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}

	return properties, nil
}

func (m *Manager) GetMess(ctx context.Context, id string) (*Mess, error) {
	mess, err := m.storage.GetMess(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get mess %v: %w", id, err)
	}

	return mess, nil
}

func (m *Manager) ListBookingsByStudent(ctx context.Context, studentID string) ([]*Booking, error) {
	bookings, err := m.storage.ListBookingsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of student %v: %w", studentID, err)
	}

	return bookings, nil
}
