package migration

import (
	"context"
	"fmt"

	"github.com/avstrong/campusnest/internal/logger"
	"github.com/avstrong/campusnest/internal/rental"
)

const (
	DemoOwnerID    = "owner-1"
	DemoPropertyID = "p-1"
	DemoMessID     = "m-1"
)

type storage interface {
	AddProperty(ctx context.Context, property *rental.Property) error
	AddMess(ctx context.Context, mess *rental.Mess) error
}

// Up seeds the sandbox with a demo owner's properties and a mess admitting
// messCapacity subscribers.
func Up(ctx context.Context, l *logger.Logger, storage storage, messCapacity int) error {
	properties := []*rental.Property{
		{
			ID:          DemoPropertyID,
			OwnerID:     DemoOwnerID,
			Title:       "Sunrise Residency",
			Location:    "North Campus Road",
			MonthlyRent: 6000, //nolint:gomnd
			HasMess:     true,
			MessID:      DemoMessID,
			Rooms: []rental.Room{
				{
					ID:             "r-1",
					Name:           "Twin sharing",
					TotalRooms:     4,    //nolint:gomnd
					AvailableRooms: 4,    //nolint:gomnd
					Price:          3500, //nolint:gomnd
					PricePerBed:    true,
					MaxOccupancy:   2, //nolint:gomnd
				},
				{
					ID:             "r-2",
					Name:           "Single",
					TotalRooms:     2,    //nolint:gomnd
					AvailableRooms: 2,    //nolint:gomnd
					Price:          7000, //nolint:gomnd
					MaxOccupancy:   1,
				},
			},
		},
		{
			ID:          "p-2",
			OwnerID:     DemoOwnerID,
			Title:       "Lakeview Studios",
			Location:    "Lake Side",
			MonthlyRent: 9000, //nolint:gomnd
		},
	}

	for _, p := range properties {
		if err := storage.AddProperty(ctx, p); err != nil {
			return fmt.Errorf("add property %s to storage: %w", p.ID, err)
		}
	}

	//nolint:exhaustruct
	mess := &rental.Mess{
		ID:             DemoMessID,
		PropertyID:     DemoPropertyID,
		Name:           "Sunrise Mess",
		Plans:          []string{"monthly", "weekly"},
		MaxSubscribers: messCapacity,
		MonthlyFee:     2500, //nolint:gomnd
	}

	if err := storage.AddMess(ctx, mess); err != nil {
		return fmt.Errorf("add mess %s to storage: %w", mess.ID, err)
	}

	l.LogInfo("Seeded %d properties and mess %s with %d seats", len(properties), mess.ID, messCapacity)

	return nil
}
