package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/avstrong/campusnest/internal/bookflow"
)

type theme struct {
	brand     lipgloss.Style
	title     lipgloss.Style
	body      lipgloss.Style
	highlight lipgloss.Style
	error     lipgloss.Style
	box       lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		brand:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42")),
		title:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42")).Bold(true),
		body:      lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0")),
		highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77")).Bold(true),
		error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF8C42")).
			Padding(0, 2), //nolint:gomnd
	}
}

var planLabels = map[bookflow.Plan]string{
	bookflow.PlanRoomOnly: "Room only",
	bookflow.PlanRoomMess: "Room + mess (meals included)",
}

func (m model) View() string {
	step := m.flow.Step()

	sections := []string{
		m.theme.title.Render(fmt.Sprintf("Book property %s", m.flow.PropertyID())),
		m.theme.body.Faint(true).Render(fmt.Sprintf("step %d of 3 · %s", min(int(step)+1, 3), step)), //nolint:gomnd
		"",
	}

	switch step {
	case bookflow.StepPlan:
		sections = append(sections, m.planView())
	case bookflow.StepDates:
		sections = append(sections, m.datesView())
	case bookflow.StepConfirm:
		sections = append(sections, m.confirmView())
	case bookflow.StepDone:
		sections = append(sections, m.doneView())
	}

	if m.err != "" {
		sections = append(sections, "", m.theme.error.Render("⚠ "+m.err))
	}

	sections = append(sections, "", m.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m model) planView() string {
	lines := []string{m.theme.body.Render("Choose a plan:")}

	for i, p := range bookflow.Plans {
		label := "  " + planLabels[p]
		if i == m.planCursor {
			label = m.theme.highlight.Render("> " + planLabels[p])
		}

		lines = append(lines, label)
	}

	return strings.Join(lines, "\n")
}

func (m model) datesView() string {
	lines := make([]string, 0, len(m.inputs)+1)
	lines = append(lines, m.theme.body.Render("Stay details:"))

	for _, in := range m.inputs {
		lines = append(lines, in.View())
	}

	return strings.Join(lines, "\n")
}

func (m model) confirmView() string {
	p := m.flow.Params()

	room := p.RoomID
	if room == "" {
		room = "any"
	}

	summary := m.theme.box.Render(strings.Join([]string{
		fmt.Sprintf("Plan:     %s", planLabels[m.flow.Plan()]),
		fmt.Sprintf("Move-in:  %s", p.StartDate.Format(dateLayout)),
		fmt.Sprintf("Move-out: %s", p.EndDate.Format(dateLayout)),
		fmt.Sprintf("Room:     %s × %d, %d member(s)", room, p.RoomsCount, p.MembersCount),
	}, "\n"))

	if m.submitting {
		return lipgloss.JoinVertical(lipgloss.Left, summary, "", m.spinner.View()+" Sending booking request...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, summary, "", m.theme.brand.Render("Press enter to confirm the booking"))
}

func (m model) doneView() string {
	b := m.flow.Booking()
	if b == nil {
		return ""
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.highlight.Render("✓ Booking created"),
		m.theme.body.Render(fmt.Sprintf("id %s · status %s · price %.2f", b.ID, b.Status, b.Price)),
	)
}
