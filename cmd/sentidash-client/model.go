package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sentidash/internal/chart"
	"sentidash/internal/dashboard"
	"sentidash/internal/series"
	"sentidash/internal/upstream"
)

// Styles.
var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	productStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	currentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#42fa09"))
	futureStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff7f0e"))
)

type summaryMsg struct {
	req dashboard.Request
	sum *upstream.Summary
	err error
}

type graphMsg struct {
	req dashboard.Request
	ms  series.MergedSeries
	err error
}

type model struct {
	svc     *dashboard.Service
	layout  string
	timeout time.Duration
	logger  *slog.Logger

	state    dashboard.State
	products []string
	cursor   int

	viewport      viewport.Model
	spinner       spinner.Model
	ready         bool
	width, height int
}

func initialModel(svc *dashboard.Service, layout string, timeout time.Duration, logger *slog.Logger) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle
	return model{
		svc:      svc,
		layout:   layout,
		timeout:  timeout,
		logger:   logger,
		products: svc.Products(),
		spinner:  sp,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) fetchSummary(req dashboard.Request) tea.Cmd {
	svc, timeout := m.svc, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sum, err := svc.Summary(ctx, req.Product)
		return summaryMsg{req: req, sum: sum, err: err}
	}
}

func (m model) fetchGraph(req dashboard.Request) tea.Cmd {
	svc, timeout := m.svc, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ms, err := svc.Graph(ctx, req.Product)
		return graphMsg{req: req, ms: ms, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := max(m.height-2, 1)
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refresh()
		return m, nil

	case summaryMsg:
		if !m.state.IsCurrent(msg.req) {
			m.logger.Debug("discarding stale summary", "product", msg.req.Product)
		}
		m.state = m.state.ResolveSummary(msg.req, msg.sum, msg.err)
		m.refresh()
		return m, nil

	case graphMsg:
		if !m.state.IsCurrent(msg.req) {
			m.logger.Debug("discarding stale graph", "product", msg.req.Product)
		}
		m.state = m.state.ResolveGraph(msg.req, msg.ms, msg.err)
		m.refresh()
		if m.ready {
			m.viewport.GotoTop()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state.Loading {
			m.refresh()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	if m.state.Screen == dashboard.ScreenGraph {
		switch msg.String() {
		case "esc", "backspace", "b":
			m.state = m.state.Back()
			// The selection screen shows the summary again.
			var cmd tea.Cmd
			if m.state.Selected != "" {
				var req dashboard.Request
				m.state, req = m.state.Select(m.state.Selected)
				cmd = m.fetchSummary(req)
			}
			m.refresh()
			return m, cmd
		case "r":
			var req dashboard.Request
			m.state, req = m.state.OpenGraph(m.state.Selected)
			m.refresh()
			return m, m.fetchGraph(req)
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.products)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.products) == 0 {
			return m, nil
		}
		var req dashboard.Request
		m.state, req = m.state.Select(m.products[m.cursor])
		m.refresh()
		return m, m.fetchSummary(req)
	case "g", "t":
		if !m.state.CanShowTrend() {
			return m, nil
		}
		var req dashboard.Request
		m.state, req = m.state.OpenGraph(m.state.Selected)
		m.refresh()
		return m, m.fetchGraph(req)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	m.refresh()
	return m, nil
}

func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var title, keys string
	switch m.state.Screen {
	case dashboard.ScreenGraph:
		title = fmt.Sprintf(" %s Sentiment Trend ", m.state.Selected)
		keys = " q quit  esc back  r reload  pgup/dn scroll"
	default:
		title = " Choose a Product "
		if m.state.Selected != "" {
			title += fmt.Sprintf("   selected: %s ", m.state.Selected)
		}
		keys = " q quit  up/dn move  enter select  g show trend"
	}

	pct := fmt.Sprintf("%.0f%% ", m.viewport.ScrollPercent()*100)
	gap := max(m.width-lipgloss.Width(keys)-len(pct), 0)
	header := headerStyle.Render(padRight(title, m.width))
	footer := footerStyle.Render(padRight(keys+strings.Repeat(" ", gap)+pct, m.width))
	return header + "\n" + m.viewport.View() + "\n" + footer
}

func (m model) renderContent() string {
	var b strings.Builder
	switch m.state.Screen {
	case dashboard.ScreenGraph:
		m.renderGraph(&b)
	default:
		m.renderSelect(&b)
	}
	return b.String()
}

func (m model) renderSelect(b *strings.Builder) {
	b.WriteString("\n")
	if len(m.products) == 0 {
		b.WriteString(dimStyle.Render("  (no products configured)"))
		b.WriteString("\n")
	}
	for i, p := range m.products {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		name := productStyle.Render(p)
		if p == m.state.Selected {
			name = selectedStyle.Render(" " + p + " ")
		}
		b.WriteString(marker + name + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.state.Loading:
		b.WriteString("  " + m.spinner.View() + dimStyle.Render(" loading summary..."))
		b.WriteString("\n")
	case m.state.Err != "":
		b.WriteString(errStyle.Render("  ✗ " + m.state.Err))
		b.WriteString("\n")
	case m.state.Summary != nil:
		sum := m.state.Summary
		b.WriteString(sectionStyle.Width(m.width).Render(fmt.Sprintf(" %s Summary ", m.state.Selected)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s %s\n\n", labelStyle.Render("ASIN:"), dashboard.FormatText(sum.ASIN)))
		renderRows(b, "Historical", dashboard.SummaryRows(sum.Historical, m.layout))
		b.WriteString("\n")
		renderRows(b, "Forecast", dashboard.SummaryRows(sum.Forecast, m.layout))
	}

	if !m.state.CanShowTrend() {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  select a product to show its trend"))
		b.WriteString("\n")
	}
}

func renderRows(b *strings.Builder, title string, rows []dashboard.Row) {
	b.WriteString("  " + labelStyle.Render(title) + "\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("    %-12s %s\n", r.Label, r.Value))
	}
}

func (m model) renderGraph(b *strings.Builder) {
	b.WriteString("\n")
	switch {
	case m.state.Loading:
		b.WriteString("  " + m.spinner.View() + dimStyle.Render(" loading graph data..."))
		b.WriteString("\n")
		return
	case m.state.Err != "":
		b.WriteString(errStyle.Render("  ✗ " + m.state.Err))
		b.WriteString("\n")
		return
	case len(m.state.Series) == 0:
		b.WriteString(dimStyle.Render("  No data points for this product."))
		b.WriteString("\n")
		return
	}

	cur, fut := chart.Sparklines(m.state.Series)
	b.WriteString(fmt.Sprintf("  %-18s %s\n", chart.CurrentName, currentStyle.Render(cur)))
	b.WriteString(fmt.Sprintf("  %-18s %s\n\n", chart.FutureName, futureStyle.Render(fut)))

	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-12s %18s %18s", "Date", chart.CurrentName, chart.FutureName)))
	b.WriteString("\n")
	for _, r := range dashboard.PointRows(m.state.Series) {
		b.WriteString(fmt.Sprintf("  %-12s %s %s\n",
			r.Date,
			currentStyle.Render(fmt.Sprintf("%18s", r.Current)),
			futureStyle.Render(fmt.Sprintf("%18s", r.Future)),
		))
	}
}

func padRight(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
