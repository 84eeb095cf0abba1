package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/avstrong/campusnest/internal/rental"
)

const daysInMonth = 30

type storage interface {
	GetMess(ctx context.Context, id string) (*rental.Mess, error)
}

type Manager struct {
	storage storage
}

func New(storage storage) *Manager {
	return &Manager{storage: storage}
}

// Months counts started 30 day periods between start and end, at least one.
func Months(start, end time.Time) int {
	days := end.Sub(start).Hours() / 24 //nolint:gomnd
	months := int(math.Ceil(days / daysInMonth))

	if months < 1 {
		return 1
	}

	return months
}

// RoomRent charges the room price per room, or per member when the room is
// priced per bed. Without a room the property's monthly rent is used.
type RoomRent struct{}

func (RoomRent) Apply(b *rental.Booking, p *rental.Property) error {
	months := float64(Months(b.StartDate, b.EndDate))

	if b.RoomID == "" {
		if p.MonthlyRent <= 0 {
			return fmt.Errorf("property %s: %w", p.ID, rental.ErrNoPrice)
		}

		b.Price += p.MonthlyRent * float64(b.RoomsCount) * months

		return nil
	}

	room, ok := p.Room(b.RoomID)
	if !ok {
		return fmt.Errorf("room %s of property %s: %w", b.RoomID, p.ID, rental.ErrRecordNotFound)
	}

	units := b.RoomsCount
	if room.PricePerBed {
		units = b.MembersCount
	}

	b.Price += room.Price * float64(units) * months

	return nil
}

// MessAddon charges the mess monthly fee for every member when meals are
// selected.
type MessAddon struct {
	MonthlyFee float64
}

func (m MessAddon) Apply(b *rental.Booking, _ *rental.Property) error {
	if !b.MealsSelected {
		return nil
	}

	b.Price += m.MonthlyFee * float64(b.MembersCount) * float64(Months(b.StartDate, b.EndDate))

	return nil
}

func (m *Manager) Strategies(ctx context.Context, p *rental.Property) ([]rental.PriceStrategy, error) {
	strategies := []rental.PriceStrategy{RoomRent{}}

	if !p.HasMess || p.MessID == "" {
		return strategies, nil
	}

	mess, err := m.storage.GetMess(ctx, p.MessID)
	if err != nil {
		return nil, fmt.Errorf("get mess %s of property %s: %w", p.MessID, p.ID, err)
	}

	return append(strategies, MessAddon{MonthlyFee: mess.MonthlyFee}), nil
}
