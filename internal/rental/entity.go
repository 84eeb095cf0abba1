package rental

import "time"

type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusApproved BookingStatus = "approved"
	StatusRejected BookingStatus = "rejected"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

type Role string

const (
	RoleStudent Role = "student"
	RoleOwner   Role = "owner"
)

type Room struct {
	ID             string  `json:"id"`
	PropertyID     string  `json:"propertyId"`
	Name           string  `json:"name"`
	TotalRooms     int     `json:"totalRooms"`
	AvailableRooms int     `json:"availableRooms"`
	Price          float64 `json:"price"`
	PricePerBed    bool    `json:"pricePerBed"`
	MaxOccupancy   int     `json:"maxOccupancy"`
}

type Property struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"ownerId"`
	Title       string  `json:"title"`
	Location    string  `json:"location"`
	MonthlyRent float64 `json:"monthlyRent"`
	Rooms       []Room  `json:"rooms"`
	HasMess     bool    `json:"hasMess"`
	MessID      string  `json:"messId,omitempty"`
}

func (p *Property) Room(id string) (*Room, bool) {
	for i := range p.Rooms {
		if p.Rooms[i].ID == id {
			return &p.Rooms[i], true
		}
	}

	return nil, false
}

type Booking struct {
	ID            string        `json:"id"`
	PropertyID    string        `json:"propertyId"`
	RoomID        string        `json:"roomId,omitempty"`
	StudentID     string        `json:"studentId"`
	StartDate     time.Time     `json:"startDate"`
	EndDate       time.Time     `json:"endDate"`
	MealsSelected bool          `json:"mealsSelected"`
	RoomsCount    int           `json:"roomsCount"`
	MembersCount  int           `json:"membersCount"`
	Status        BookingStatus `json:"status"`
	Price         float64       `json:"price"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type Mess struct {
	ID                 string   `json:"id"`
	PropertyID         string   `json:"propertyId"`
	Name               string   `json:"name"`
	Plans              []string `json:"plans"`
	MaxSubscribers     int      `json:"maxSubscribers"`
	CurrentSubscribers int      `json:"currentSubscribers"`
	MonthlyFee         float64  `json:"monthlyFee"`
}

func (m *Mess) OffersPlan(plan string) bool {
	if len(m.Plans) == 0 {
		return true
	}

	for _, p := range m.Plans {
		if p == plan {
			return true
		}
	}

	return false
}

type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	MessID       string    `json:"messId"`
	Plan         string    `json:"plan"`
	StartDate    time.Time `json:"startDate"`
	CreatedAt    time.Time `json:"createdAt"`
}

type BookInput struct {
	PropertyID    string    `json:"-"`
	StudentID     string    `json:"-"`
	RoomID        string    `json:"roomId,omitempty"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	MealsSelected bool      `json:"mealsSelected"`
	RoomsCount    int       `json:"roomsCount"`
	MembersCount  int       `json:"membersCount"`
}

type SubscribeInput struct {
	MessID       string    `json:"-"`
	SubscriberID string    `json:"-"`
	Plan         string    `json:"plan"`
	StartDate    time.Time `json:"startDate"`
}
