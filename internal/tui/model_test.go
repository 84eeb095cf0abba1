package tui

import (
	"context"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/campusnest/internal/bookflow"
	"github.com/avstrong/campusnest/internal/client"
	"github.com/avstrong/campusnest/internal/logger"
)

type countingCreator struct {
	calls atomic.Int32
	err   error
}

func (c *countingCreator) Create(
	_ context.Context,
	propertyID string,
	params client.CreateBookingParams,
	_ ...client.RequestOption,
) (*client.Booking, error) {
	c.calls.Add(1)

	if c.err != nil {
		return nil, c.err
	}

	//nolint:exhaustruct
	return &client.Booking{ID: "b-1", PropertyID: propertyID, Status: "pending", MealsSelected: params.MealsSelected}, nil
}

func press(t *testing.T, m model, k tea.KeyType) (model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(tea.KeyMsg{Type: k}) //nolint:exhaustruct

	nm, ok := next.(model)
	require.True(t, ok)

	return nm, cmd
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()

	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}) //nolint:exhaustruct
		m = next.(model)                                                      //nolint:forcetypeassert
	}

	return m
}

// confirmMsg runs the batch returned by the confirm key and returns the
// booking result.
func confirmMsg(t *testing.T, cmd tea.Cmd) confirmResultMsg {
	t.Helper()
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)

	for _, c := range batch {
		if c == nil {
			continue
		}

		if res, ok := c().(confirmResultMsg); ok {
			return res
		}
	}

	t.Fatal("no confirm result in batch")

	return confirmResultMsg{} //nolint:exhaustruct
}

func toConfirmStep(t *testing.T, creator *countingCreator) model {
	t.Helper()

	flow, err := bookflow.New(logger.NewNop(), creator, "p-1")
	require.NoError(t, err)

	m := newModel(context.Background(), flow)

	m, _ = press(t, m, tea.KeyDown)
	m, _ = press(t, m, tea.KeyEnter)
	require.Equal(t, bookflow.StepDates, flow.Step())
	assert.Equal(t, bookflow.PlanRoomMess, flow.Plan())

	m = typeText(t, m, "2025-07-01")
	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "2025-08-01")
	m, _ = press(t, m, tea.KeyEnter)
	require.Equal(t, bookflow.StepConfirm, flow.Step())

	return m
}

func TestModel_WalkthroughAndSingleConfirm(t *testing.T) {
	creator := &countingCreator{} //nolint:exhaustruct
	m := toConfirmStep(t, creator)

	assert.Contains(t, m.View(), "Press enter to confirm")

	m, cmd := press(t, m, tea.KeyEnter)
	assert.True(t, m.submitting)

	m, again := press(t, m, tea.KeyEnter)
	assert.Nil(t, again, "confirm key ignored while pending")

	next, _ := m.Update(confirmMsg(t, cmd))
	m = next.(model) //nolint:forcetypeassert

	assert.EqualValues(t, 1, creator.calls.Load())
	assert.Equal(t, bookflow.StepDone, m.flow.Step())
	assert.Contains(t, m.View(), "Booking created")

	_, quit := press(t, m, tea.KeyEnter)
	require.NotNil(t, quit)
	assert.IsType(t, tea.QuitMsg{}, quit())
}

func TestModel_ShowsServerMessage(t *testing.T) {
	creator := &countingCreator{err: &client.APIError{StatusCode: 412, Message: "Room is fully booked", Body: nil}}
	m := toConfirmStep(t, creator)

	m, cmd := press(t, m, tea.KeyEnter)

	next, _ := m.Update(confirmMsg(t, cmd))
	m = next.(model) //nolint:forcetypeassert

	assert.False(t, m.submitting)
	assert.Equal(t, bookflow.StepConfirm, m.flow.Step())
	assert.Contains(t, m.View(), "Room is fully booked")
	assert.EqualValues(t, 1, creator.calls.Load())
}

func TestModel_InvalidDate(t *testing.T) {
	flow, err := bookflow.New(logger.NewNop(), &countingCreator{}, "p-1") //nolint:exhaustruct
	require.NoError(t, err)

	m := newModel(context.Background(), flow)
	m, _ = press(t, m, tea.KeyEnter)

	m = typeText(t, m, "July 1st")
	m, _ = press(t, m, tea.KeyEnter)

	assert.Equal(t, bookflow.StepDates, flow.Step())
	assert.Contains(t, m.err, "YYYY-MM-DD")

	m, _ = press(t, m, tea.KeyEsc)
	assert.Equal(t, bookflow.StepPlan, flow.Step())
	assert.Empty(t, m.err)
}
