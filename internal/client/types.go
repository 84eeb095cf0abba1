package client

import "time"

type Room struct {
	ID             string  `json:"id"`
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

type Booking struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"propertyId"`
	RoomID        string    `json:"roomId,omitempty"`
	StudentID     string    `json:"studentId"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	MealsSelected bool      `json:"mealsSelected"`
	RoomsCount    int       `json:"roomsCount"`
	MembersCount  int       `json:"membersCount"`
	Status        string    `json:"status"`
	Price         float64   `json:"price"`
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

type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	MessID       string    `json:"messId"`
	Plan         string    `json:"plan"`
	StartDate    time.Time `json:"startDate"`
}

type CreateBookingParams struct {
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	MealsSelected bool      `json:"mealsSelected"`
	RoomID        string    `json:"roomId,omitempty"`
	RoomsCount    int       `json:"roomsCount"`
	MembersCount  int       `json:"membersCount"`
}

type SubscribeParams struct {
	Plan      string    `json:"plan"`
	StartDate time.Time `json:"startDate"`
}
