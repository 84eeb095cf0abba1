package client

import (
	"context"
	"net/url"
)

type BookingService struct {
	c *Client
}

func (s *BookingService) Create(
	ctx context.Context,
	propertyID string,
	params CreateBookingParams,
	opts ...RequestOption,
) (*Booking, error) {
	if propertyID == "" {
		return nil, ErrMissingIDParameter
	}

	res := &Booking{} //nolint:exhaustruct
	if err := s.c.Post(ctx, "/api/bookings/book/"+url.PathEscape(propertyID), params, res, opts...); err != nil {
		return nil, err
	}

	return res, nil
}

// UpdateStatus moves a booking to approved or rejected. Owner only.
func (s *BookingService) UpdateStatus(
	ctx context.Context,
	bookingID, status string,
	opts ...RequestOption,
) (*Booking, error) {
	if bookingID == "" {
		return nil, ErrMissingIDParameter
	}

	body := struct {
		Status string `json:"status"`
	}{Status: status}

	res := &Booking{} //nolint:exhaustruct
	if err := s.c.Patch(ctx, "/api/bookings/owner/"+url.PathEscape(bookingID), body, res, opts...); err != nil {
		return nil, err
	}

	return res, nil
}

func (s *BookingService) ListMine(ctx context.Context, opts ...RequestOption) ([]Booking, error) {
	var res []Booking
	if err := s.c.Get(ctx, "/api/bookings/mine", &res, opts...); err != nil {
		return nil, err
	}

	return res, nil
}

type MessService struct {
	c *Client
}

func (s *MessService) Subscribe(
	ctx context.Context,
	messID string,
	params SubscribeParams,
	opts ...RequestOption,
) (*Subscription, error) {
	if messID == "" {
		return nil, ErrMissingIDParameter
	}

	res := &Subscription{} //nolint:exhaustruct
	if err := s.c.Post(ctx, "/api/mess/"+url.PathEscape(messID)+"/subscribe", params, res, opts...); err != nil {
		return nil, err
	}

	return res, nil
}

func (s *MessService) Get(ctx context.Context, messID string, opts ...RequestOption) (*Mess, error) {
	if messID == "" {
		return nil, ErrMissingIDParameter
	}

	res := &Mess{} //nolint:exhaustruct
	if err := s.c.Get(ctx, "/api/mess/"+url.PathEscape(messID), res, opts...); err != nil {
		return nil, err
	}

	return res, nil
}

type PropertyService struct {
	c *Client
}

func (s *PropertyService) List(ctx context.Context, opts ...RequestOption) ([]Property, error) {
	var res []Property
	if err := s.c.Get(ctx, "/api/properties", &res, opts...); err != nil {
		return nil, err
	}

	return res, nil
}

func (s *PropertyService) Get(ctx context.Context, propertyID string, opts ...RequestOption) (*Property, error) {
	if propertyID == "" {
		return nil, ErrMissingIDParameter
	}

	res := &Property{} //nolint:exhaustruct
	if err := s.c.Get(ctx, "/api/properties/"+url.PathEscape(propertyID), res, opts...); err != nil {
		return nil, err
	}

	return res, nil
}
