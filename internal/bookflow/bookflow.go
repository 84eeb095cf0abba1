package bookflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avstrong/campusnest/internal/client"
	"github.com/avstrong/campusnest/internal/logger"
)

type Step int

const (
	StepPlan Step = iota
	StepDates
	StepConfirm
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepPlan:
		return "plan"
	case StepDates:
		return "dates"
	case StepConfirm:
		return "confirm"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

type Plan string

const (
	PlanRoomOnly Plan = "room-only"
	PlanRoomMess Plan = "room+mess"
)

var Plans = []Plan{PlanRoomOnly, PlanRoomMess}

var (
	ErrMissingProperty = errors.New("property id is required")
	ErrUnknownPlan     = errors.New("unknown plan")
	ErrNoPlan          = errors.New("choose a plan first")
	ErrNoDates         = errors.New("choose move-in and move-out dates first")
	ErrInvalidCount    = errors.New("rooms and members must be at least 1")
	ErrWrongStep       = errors.New("action not allowed on this step")
	ErrPending         = errors.New("booking request already in flight")
)

type creator interface {
	Create(
		ctx context.Context,
		propertyID string,
		params client.CreateBookingParams,
		opts ...client.RequestOption,
	) (*client.Booking, error)
}

// Flow is the plan -> dates -> confirm wizard. It is safe for concurrent use;
// Confirm may run on another goroutine than the one driving the steps.
type Flow struct {
	mu      sync.Mutex
	l       *logger.Logger
	creator creator
	newKey  func() string

	propertyID   string
	step         Step
	plan         Plan
	moveIn       time.Time
	moveOut      time.Time
	roomID       string
	roomsCount   int
	membersCount int

	pending        bool
	idempotencyKey string
	lastErr        string
	booking        *client.Booking
}

func New(l *logger.Logger, creator creator, propertyID string) (*Flow, error) {
	if propertyID == "" {
		return nil, ErrMissingProperty
	}

	//nolint:exhaustruct
	return &Flow{
		l:            l,
		creator:      creator,
		newKey:       uuid.NewString,
		propertyID:   propertyID,
		step:         StepPlan,
		roomsCount:   1,
		membersCount: 1,
	}, nil
}

func (f *Flow) SetPlan(p Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p != PlanRoomOnly && p != PlanRoomMess {
		return ErrUnknownPlan
	}

	if f.step != StepPlan {
		return ErrWrongStep
	}

	f.plan = p

	return nil
}

// SetDates records the stay. Ordering of the two dates is left to the server.
func (f *Flow) SetDates(moveIn, moveOut time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepDates {
		return ErrWrongStep
	}

	f.moveIn, f.moveOut = moveIn, moveOut

	return nil
}

func (f *Flow) SetRoom(roomID string, rooms, members int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepDates {
		return ErrWrongStep
	}

	if rooms < 1 || members < 1 {
		return ErrInvalidCount
	}

	f.roomID, f.roomsCount, f.membersCount = roomID, rooms, members

	return nil
}

// Next advances one step. Entering the confirmation step mints the
// idempotency key of this booking attempt.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepPlan:
		if f.plan == "" {
			return ErrNoPlan
		}

		f.step = StepDates
	case StepDates:
		if f.moveIn.IsZero() || f.moveOut.IsZero() {
			return ErrNoDates
		}

		f.step = StepConfirm
		f.idempotencyKey = f.newKey()
		f.lastErr = ""
	default:
		return ErrWrongStep
	}

	return nil
}

func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepDates:
		f.step = StepPlan
	case StepConfirm:
		if f.pending {
			return ErrPending
		}

		f.step = StepDates
		f.idempotencyKey = ""
		f.lastErr = ""
	default:
		return ErrWrongStep
	}

	return nil
}

func (f *Flow) params() client.CreateBookingParams {
	return client.CreateBookingParams{
		StartDate:     f.moveIn,
		EndDate:       f.moveOut,
		MealsSelected: f.plan == PlanRoomMess,
		RoomID:        f.roomID,
		RoomsCount:    f.roomsCount,
		MembersCount:  f.membersCount,
	}
}

// Confirm sends exactly one booking creation request. While it is in flight
// further calls return ErrPending. A failure keeps the flow on the
// confirmation step with the server's message in LastError.
func (f *Flow) Confirm(ctx context.Context) (*client.Booking, error) {
	f.mu.Lock()

	if f.step != StepConfirm {
		f.mu.Unlock()

		return nil, ErrWrongStep
	}

	if f.pending {
		f.mu.Unlock()

		return nil, ErrPending
	}

	f.pending = true
	f.lastErr = ""
	params := f.params()
	key := f.idempotencyKey
	propertyID := f.propertyID

	f.mu.Unlock()

	b, err := f.creator.Create(ctx, propertyID, params, client.WithIdempotencyKey(key))

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = false

	if err != nil {
		f.lastErr = client.Message(err)
		f.l.LogWarn("Booking of property %s failed: %v", propertyID, err)

		return nil, err
	}

	f.booking = b
	f.step = StepDone

	f.l.LogInfo("Booking %s of property %s created", b.ID, propertyID)

	return b, nil
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.step
}

func (f *Flow) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pending
}

func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastErr
}

func (f *Flow) Booking() *client.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.booking
}

func (f *Flow) PropertyID() string {
	return f.propertyID
}

func (f *Flow) Plan() Plan {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.plan
}

// Params is the request body the next Confirm would send.
func (f *Flow) Params() client.CreateBookingParams {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.params()
}

func (f *Flow) IdempotencyKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.idempotencyKey
}
