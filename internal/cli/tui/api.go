package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages for tea.Cmd
type healthMsg struct {
	data *HealthData
	err  error
}

type statsMsg struct {
	data *StatsData
	err  error
}

type statusMsg struct {
	data *StatusData
	err  error
}

type tickMsg time.Time

// API client for TUI
type apiClient struct {
	baseURL  string
	client   *http.Client
	user     string
	password string
}

func newAPIClient(cfg Config) *apiClient {
	return &apiClient{
		baseURL: cfg.ServerURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		user:     cfg.User,
		password: cfg.Password,
	}
}

// get returns the body for any status in accept.
func (c *apiClient) get(path string, accept ...int) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if c.user != "" && c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	ok := resp.StatusCode == http.StatusOK
	for _, code := range accept {
		ok = ok || resp.StatusCode == code
	}
	if !ok {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func fetch[T any](cfg Config, path string, accept ...int) (*T, error) {
	data, err := newAPIClient(cfg).get(path, accept...)
	if err != nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &v, nil
}

func fetchHealth(cfg Config) tea.Cmd {
	return func() tea.Msg {
		data, err := fetch[HealthData](cfg, "/health", http.StatusInternalServerError)
		return healthMsg{data: data, err: err}
	}
}

func fetchStats(cfg Config) tea.Cmd {
	return func() tea.Msg {
		data, err := fetch[StatsData](cfg, "/stats")
		return statsMsg{data: data, err: err}
	}
}

func fetchStatus(cfg Config) tea.Cmd {
	return func() tea.Msg {
		data, err := fetch[StatusData](cfg, "/status")
		return statusMsg{data: data, err: err}
	}
}

func fetchAll(cfg Config) tea.Cmd {
	return tea.Batch(fetchHealth(cfg), fetchStats(cfg), fetchStatus(cfg))
}

// tick creates a periodic tick command
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
