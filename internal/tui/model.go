package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"cag/internal/domain"
	"cag/internal/metrics"
)

// CAGPort is the TUI-facing subset of the query router.
type CAGPort interface {
	Answer(ctx context.Context, query string, useCache bool) (domain.QueryResult, error)
	Metrics() metrics.Snapshot
	CachedTopics() []string
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx      context.Context
	service  CAGPort
	input    textinput.Model
	viewport viewport.Model
	result   *domain.QueryResult
	useCache bool
	status   string
	ready    bool
}

// New creates a new TUI model instance.
func New(ctx context.Context, service CAGPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter (Tab toggles cache)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		service:  service,
		input:    ti,
		viewport: vp,
		useCache: true,
		status:   "Loaded. Type to ask.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 2 + qh + 1 // header, topics, status, metrics, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			m.useCache = !m.useCache
			m.status = "Cache " + onOff(m.useCache)
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			res, err := m.service.Answer(m.ctx, q, m.useCache)
			if err != nil {
				m.status = "Error: " + err.Error()
				m.result = nil
			} else {
				m.result = &res
				m.status = fmt.Sprintf("Answered %q", q)
				m.input.SetValue("")
			}
			m.viewport.SetContent(m.renderResult())
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Cache Augmented Generation") +
		"  " + modeStyle(m.useCache).Render("cache "+onOff(m.useCache))
	topics := dimStyle.Render("Cached topics: " + strings.Join(m.service.CachedTopics(), ", "))
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + topics + "\n" + results + "\n" + input + "\n" + status + "\n" + dimStyle.Render(renderMetrics(m.service.Metrics()))
}

func (m Model) renderResult() string {
	if m.result == nil {
		return "No answer yet."
	}
	r := m.result
	source := "similarity search"
	if r.UsedCache {
		source = "cache: " + strings.Join(r.TopicsUsed, ", ")
	}
	title := fmt.Sprintf("%s  %s  %s", modeStyle(r.UsedCache).Render(hitMiss(r.UsedCache)), source, r.ResponseTime.Round(time.Millisecond))
	return title + "\n\n" + highlightBestSentence(r.Response, r.Query)
}

func renderMetrics(s metrics.Snapshot) string {
	return fmt.Sprintf("hits %s (avg %.3fs)  misses %s (avg %.3fs)  hit rate %.0f%%",
		humanize.Comma(int64(s.CacheHits)), s.AvgResponseTimeWithCache,
		humanize.Comma(int64(s.CacheMisses)), s.AvgResponseTimeWithoutCache,
		s.HitRate()*100)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hitStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	missStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func modeStyle(on bool) lipgloss.Style {
	if on {
		return hitStyle
	}
	return missStyle
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func hitMiss(b bool) string {
	if b {
		return "HIT"
	}
	return "MISS"
}

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := splitSentences(text)
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func splitSentences(text string) []string {
	locs := sentenceRe.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(locs)+1)
	end := 0
	for _, loc := range locs {
		out = append(out, text[loc[0]:loc[1]])
		end = loc[1]
	}
	// unterminated tail, e.g. a trailing list
	if rest := text[end:]; strings.TrimSpace(rest) != "" {
		out = append(out, rest)
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	for t := range toTokenSet(sentence) {
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
