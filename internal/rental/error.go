package rental

import (
	"errors"
	"fmt"
)

var (
	ErrNextID         = errors.New("get next id from generator")
	ErrLogic          = errors.New("logic error")
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate request")
	ErrForbidden      = errors.New("forbidden")
	ErrStatus         = errors.New("invalid status transition")
	ErrNoPrice        = errors.New("no price configured")
)

// CapacityError reports exhausted rooms or mess seats.
type CapacityError struct {
	errors []string
}

func NewCapacityError() *CapacityError {
	//nolint:exhaustruct
	return &CapacityError{}
}

func IsCapacityError(err error) *CapacityError {
	if err == nil {
		return nil
	}

	var capacityError *CapacityError

	if errors.As(err, &capacityError) {
		return capacityError
	}

	return nil
}

func (e *CapacityError) AddUnavailableRoom(propertyID, roomID string, requested, available int) {
	e.errors = append(e.errors, fmt.Sprintf(
		"room '%v' of property '%v' has %d rooms available, %d requested", roomID, propertyID, available, requested,
	))
}

func (e *CapacityError) AddFullMess(messID string, maxSubscribers int) {
	e.errors = append(e.errors, fmt.Sprintf("mess '%v' is full (%d subscribers)", messID, maxSubscribers))
}

func (e *CapacityError) Error() string {
	if e.Count() == 1 {
		return e.errors[0]
	}

	return fmt.Sprintf("%+v", e.errors)
}

func (e *CapacityError) Fields() []string {
	return e.errors
}

func (e *CapacityError) Count() int {
	return len(e.errors)
}

type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{
		fields: make(map[string][]string),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) fieldsCount() int {
	return len(ie.fields)
}

func (ie *InputError) addError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) Error() string {
	return fmt.Sprintf("validation failed: %+v", ie.fields)
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}
