package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/quadlab/internal/quad"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type iterMsg quad.Iteration

type doneMsg struct {
	res *quad.Result
	err error
}

// Model renders the convergence loop live: the latest iteration stats plus a
// sparkline of the error-estimate history.
type Model struct {
	fieldName string
	iters     []quad.Iteration
	res       *quad.Result
	err       error
	done      bool
	msgs      <-chan tea.Msg
}

func newModel(fieldName string, msgs <-chan tea.Msg) Model {
	return Model{fieldName: fieldName, msgs: msgs}
}

func (m Model) wait() tea.Cmd {
	return func() tea.Msg { return <-m.msgs }
}

func (m Model) Init() tea.Cmd {
	return m.wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.done {
				return m, tea.Quit
			}
		}
	case iterMsg:
		m.iters = append(m.iters, quad.Iteration(msg))
		return m, m.wait()
	case doneMsg:
		m.res = msg.res
		m.err = msg.err
		m.done = true
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("quadlab · %s", m.fieldName)))
	b.WriteString("\n")

	if len(m.iters) > 0 {
		last := m.iters[len(m.iters)-1]
		row := func(label, value string) {
			b.WriteString(labelStyle.Render(label))
			b.WriteString(valueStyle.Render(value))
			b.WriteString("\n")
		}
		row("iteration", fmt.Sprintf("%d", last.Index))
		row("grid", fmt.Sprintf("%d x %d", last.NP0, last.NP1))
		row("sum", fmt.Sprintf("%.10g", last.Sum))
		row("prev sum", fmt.Sprintf("%.10g", last.PrevSum))
		if math.IsNaN(last.ErrPct) {
			row("err", "baseline")
		} else {
			row("err", fmt.Sprintf("%.6g %%", last.ErrPct))
		}
		row("new evals", fmt.Sprintf("%d", last.NewEvals))
	}

	if graph := m.errGraph(); graph != "" {
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	if m.done {
		switch {
		case m.err != nil:
			b.WriteString(failStyle.Render(fmt.Sprintf("FAILED: %v", m.err)))
		case m.res != nil:
			b.WriteString(okStyle.Render(fmt.Sprintf(
				"converged: %.10g (err %.6g %%, %d evaluations)",
				m.res.Value, m.res.ErrEstimate, m.res.Evaluations)))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/q: quit"))
	} else {
		b.WriteString(helpStyle.Render("q: abort view (integration continues)"))
	}
	b.WriteString("\n")

	return b.String()
}

// errGraph plots log10 of the error-estimate history; the baseline pass has
// no estimate and is skipped.
func (m Model) errGraph() string {
	data := make([]float64, 0, len(m.iters))
	for _, it := range m.iters {
		if math.IsNaN(it.ErrPct) || it.ErrPct <= 0 {
			continue
		}
		data = append(data, math.Log10(it.ErrPct))
	}
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Caption("log10(err %)"),
	)
}

// Run drives one integration under the live view. The integrate callback is
// given an Observer that streams iterations into the UI; it runs on its own
// goroutine so the view stays responsive.
func Run(fieldName string, integrate func(obs quad.Observer) (*quad.Result, error)) (*quad.Result, error) {
	// buffered beyond any realistic iteration budget so the integration
	// goroutine never blocks after the view has quit
	msgs := make(chan tea.Msg, 256)

	var res *quad.Result
	var integErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, integErr = integrate(quad.ObserverFunc(func(it quad.Iteration) {
			msgs <- iterMsg(it)
		}))
		msgs <- doneMsg{res: res, err: integErr}
	}()

	p := tea.NewProgram(newModel(fieldName, msgs))
	if _, err := p.Run(); err != nil {
		return nil, err
	}
	<-done
	return res, integErr
}
