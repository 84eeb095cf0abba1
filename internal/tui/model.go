package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avstrong/campusnest/internal/bookflow"
	"github.com/avstrong/campusnest/internal/client"
)

const dateLayout = "2006-01-02"

const (
	fieldMoveIn = iota
	fieldMoveOut
	fieldRoom
	fieldRooms
	fieldMembers
	fieldCount
)

type confirmResultMsg struct {
	booking *client.Booking
	err     error
}

type model struct {
	ctx  context.Context
	flow *bookflow.Flow

	planCursor int
	inputs     []textinput.Model
	focus      int

	submitting bool
	err        string

	spinner spinner.Model
	help    help.Model
	theme   theme
}

// NewModel renders flow as a bubbletea program. ctx bounds the booking
// request.
func NewModel(ctx context.Context, flow *bookflow.Flow) tea.Model {
	return newModel(ctx, flow)
}

func newModel(ctx context.Context, flow *bookflow.Flow) model {
	t := defaultTheme()

	placeholders := [fieldCount]string{
		fieldMoveIn:  "move-in (YYYY-MM-DD)",
		fieldMoveOut: "move-out (YYYY-MM-DD)",
		fieldRoom:    "room id (optional)",
		fieldRooms:   "rooms",
		fieldMembers: "members",
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 32
		ti.Width = 30
		ti.PromptStyle = t.brand
		inputs[i] = ti
	}

	inputs[fieldRooms].SetValue("1")
	inputs[fieldMembers].SetValue("1")
	inputs[fieldMoveIn].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = t.brand

	//nolint:exhaustruct
	return model{
		ctx:     ctx,
		flow:    flow,
		inputs:  inputs,
		spinner: sp,
		help:    help.New(),
		theme:   t,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}

		switch m.flow.Step() {
		case bookflow.StepPlan:
			return m.updatePlan(msg)
		case bookflow.StepDates:
			return m.updateDates(msg)
		case bookflow.StepConfirm:
			return m.updateConfirm(msg)
		case bookflow.StepDone:
			if key.Matches(msg, keys.Enter, keys.Back) {
				return m, tea.Quit
			}
		}
	case confirmResultMsg:
		m.submitting = false
		m.err = ""

		if msg.err != nil {
			m.err = m.flow.LastError()
		}

		return m, nil
	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m model) updatePlan(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		m.planCursor = (m.planCursor + len(bookflow.Plans) - 1) % len(bookflow.Plans)
	case key.Matches(msg, keys.Down):
		m.planCursor = (m.planCursor + 1) % len(bookflow.Plans)
	case key.Matches(msg, keys.Enter):
		m.err = ""

		if err := m.flow.SetPlan(bookflow.Plans[m.planCursor]); err != nil {
			m.err = err.Error()

			return m, nil
		}

		if err := m.flow.Next(); err != nil {
			m.err = err.Error()
		}
	}

	return m, nil
}

func (m model) updateDates(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.err = ""

		if err := m.flow.Back(); err != nil {
			m.err = err.Error()
		}

		return m, nil
	case key.Matches(msg, keys.Tab):
		step := 1
		if msg.String() == "shift+tab" {
			step = fieldCount - 1
		}

		m.inputs[m.focus].Blur()
		m.focus = (m.focus + step) % fieldCount

		return m, m.inputs[m.focus].Focus()
	case key.Matches(msg, keys.Enter):
		m.err = ""

		if err := m.submitDates(); err != nil {
			m.err = err.Error()
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	return m, cmd
}

func (m model) submitDates() error {
	var (
		dates [2]time.Time
		err   error
	)

	for i, field := range []int{fieldMoveIn, fieldMoveOut} {
		value := strings.TrimSpace(m.inputs[field].Value())
		if value == "" {
			continue
		}

		if dates[i], err = time.Parse(dateLayout, value); err != nil {
			return fmt.Errorf("%s: use YYYY-MM-DD", m.inputs[field].Placeholder)
		}
	}

	rooms, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldRooms].Value()))
	if err != nil {
		return bookflow.ErrInvalidCount
	}

	members, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldMembers].Value()))
	if err != nil {
		return bookflow.ErrInvalidCount
	}

	if err := m.flow.SetDates(dates[0], dates[1]); err != nil {
		return err
	}

	if err := m.flow.SetRoom(strings.TrimSpace(m.inputs[fieldRoom].Value()), rooms, members); err != nil {
		return err
	}

	return m.flow.Next()
}

// updateConfirm ignores the confirm key while a request is pending.
func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		if m.submitting {
			return m, nil
		}

		m.err = ""

		if err := m.flow.Back(); err != nil {
			m.err = err.Error()
		}
	case key.Matches(msg, keys.Enter):
		if m.submitting || m.flow.Pending() {
			return m, nil
		}

		m.submitting = true
		m.err = ""

		return m, tea.Batch(m.confirmCmd(), m.spinner.Tick)
	}

	return m, nil
}

func (m model) confirmCmd() tea.Cmd {
	flow, ctx := m.flow, m.ctx

	return func() tea.Msg {
		b, err := flow.Confirm(ctx)

		return confirmResultMsg{booking: b, err: err}
	}
}
