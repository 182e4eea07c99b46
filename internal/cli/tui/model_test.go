package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func TestModel_LoadingBeforeSize(t *testing.T) {
	m := NewModel(Config{RefreshInterval: time.Second})
	if m.View() != "Loading..." {
		t.Errorf("expected loading view, got %q", m.View())
	}
}

func TestModel_RendersData(t *testing.T) {
	m := sized(NewModel(Config{RefreshInterval: time.Second}))

	next, _ := m.Update(healthMsg{data: &HealthData{Status: "ok", Message: "API is running"}})
	next, _ = next.Update(statsMsg{data: &StatsData{
		Requests:    4,
		Predictions: 3,
		Classes:     map[string]uint64{"setosa": 2, "virginica": 1},
	}})
	next, _ = next.Update(statusMsg{data: &StatusData{
		Version: "1.0.0",
		Process: &ProcessStatus{PID: 42, RSSBytes: 10 << 20, Threads: 8},
	}})

	view := next.View()
	for _, want := range []string{"IRISD DASHBOARD", "OK", "setosa", "virginica", "PID: 42", "Version: 1.0.0"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_HealthError(t *testing.T) {
	m := sized(NewModel(Config{RefreshInterval: time.Second}))

	next, _ := m.Update(healthMsg{err: errors.New("connection refused")})
	if !strings.Contains(next.View(), "connection refused") {
		t.Error("expected error in view")
	}

	next, _ = next.Update(healthMsg{data: &HealthData{Status: "error", Message: "artifacts failed to load"}})
	view := next.View()
	if strings.Contains(view, "connection refused") {
		t.Error("expected error to clear after a successful fetch")
	}
	if !strings.Contains(view, "ERROR") {
		t.Error("expected degraded status in view")
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(Config{RefreshInterval: time.Second})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
