package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spotterm/spotterm/internal/models"
	"github.com/spotterm/spotterm/internal/repositories"
	"github.com/spotterm/spotterm/internal/services"
	"github.com/spotterm/spotterm/internal/shared"
)

// pollInterval is the cadence of the remote-status refresh.
const pollInterval = time.Second

// Model is the session controller: it owns the current page, the playlist
// collection, and the cached playback snapshot, and it is the only owner of
// that state. All mutation happens inside Update; commands do their I/O off
// the loop and report back as messages.
type Model struct {
	ctx     context.Context
	player  services.Player
	history *repositories.HistoryRepository
	logger  *log.Logger

	page      page
	playlists []models.Playlist
	list      list.Model
	listReady bool

	state   models.PlayerState
	trackID string
	artwork []byte
	gauge   progress.Model

	// lastPoll is the deadline base for the timer poll; a command-driven
	// fetch stamps it too, superseding the tick that would land inside the
	// same interval.
	lastPoll time.Time

	width   int
	height  int
	keys    keyMap
	help    help.Model
	lastErr error
}

type tickMsg time.Time

type playbackMsg struct {
	state models.PlayerState
	err   error
}

type playlistsMsg struct {
	playlists []models.Playlist
	err       error
}

type artworkMsg struct {
	trackID string
	data    []byte
	err     error
}

type startedMsg struct {
	playlist models.Playlist
	err      error
}

type recordedMsg struct {
	err error
}

// NewModel creates the session controller. The history repository may be
// nil, in which case plays are not recorded.
func NewModel(ctx context.Context, player services.Player, history *repositories.HistoryRepository, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Model{
		ctx:     ctx,
		player:  player,
		history: history,
		logger:  logger,
		page:    playlistPage{},
		gauge:   progress.New(progress.WithGradient(spotifyGreen, "#04B575"), progress.WithoutPercentage()),
		keys:    newKeyMap(),
		help:    help.New(),
	}
}

// Init fetches the playlist collection and the first snapshot, and starts
// the poll timer.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchPlaylists(), m.fetchPlayback(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.list.SetSize(msg.Width-4, msg.Height-8)
		}
		m.gauge.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		next, cmd := m.page.handleKey(m, msg)
		m.page = next
		return m, cmd

	case tickMsg:
		if time.Since(m.lastPoll) >= pollInterval {
			return m, tea.Batch(m.fetchPlayback(), m.tick())
		}
		return m, m.tick()

	case playbackMsg:
		return m, m.applyPlayback(msg)

	case playlistsMsg:
		if msg.err != nil {
			m.logger.Warn("failed to fetch playlists", "error", msg.err)
			m.lastErr = msg.err
			return m, nil
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.list = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.list.Title = "Your Playlists"
		m.list.SetSize(m.width-4, m.height-8)
		m.listReady = true
		return m, nil

	case artworkMsg:
		// Stale fetch: the track moved on while the bytes were in flight.
		if msg.trackID != m.trackID {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("failed to fetch artwork", "error", msg.err)
			return m, nil
		}
		m.artwork = msg.data
		return m, nil

	case startedMsg:
		if msg.err != nil {
			// A failed play command does not block the page transition.
			m.logger.Warn("failed to start playlist", "playlist", msg.playlist.Name, "error", msg.err)
			m.lastErr = msg.err
		}
		return m, nil

	case recordedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to record play", "error", msg.err)
		}
		return m, nil
	}

	if _, ok := m.page.(playlistPage); ok && m.listReady {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

// applyPlayback replaces the snapshot wholesale on success and leaves it
// untouched on failure. A track-identity change invalidates the artwork
// cache and, when a history repository is wired, records the play.
func (m *Model) applyPlayback(msg playbackMsg) tea.Cmd {
	m.lastPoll = time.Now()

	if msg.err != nil {
		m.logger.Warn("playback poll failed", "error", msg.err)
		m.lastErr = msg.err
		return nil
	}

	prevID := m.trackID
	m.state = msg.state
	m.trackID = msg.state.TrackID()
	m.lastErr = nil

	if m.trackID == prevID {
		return nil
	}

	m.artwork = nil
	var cmds []tea.Cmd

	if track := m.state.Item; track != nil {
		if url := track.ArtworkURL(); url != "" {
			cmds = append(cmds, m.fetchArtwork(m.trackID, url))
		}
		if m.history != nil {
			cmds = append(cmds, m.recordPlay(*track))
		}
	}

	return tea.Batch(cmds...)
}

// View renders the current page.
func (m *Model) View() string {
	view := m.page.view(m)
	if m.lastErr != nil {
		view += "\n" + styles.warn.Render("⚠ "+m.lastErr.Error())
	}
	return view
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) fetchPlayback() tea.Cmd {
	return func() tea.Msg {
		state, err := m.player.CurrentPlayback(m.ctx)
		return playbackMsg{state: state, err: err}
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.player.Playlists(m.ctx, 0)
		return playlistsMsg{playlists: playlists, err: err}
	}
}

// skip issues the command and, on success, re-fetches the snapshot
// immediately so the view reflects the new track without waiting for the
// next tick. On failure the snapshot (and everything derived from it) is
// left alone.
func (m *Model) skip(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(m.ctx); err != nil {
			return playbackMsg{err: err}
		}
		state, err := m.player.CurrentPlayback(m.ctx)
		return playbackMsg{state: state, err: err}
	}
}

func (m *Model) startPlaylist(pl models.Playlist) tea.Cmd {
	return func() tea.Msg {
		if err := m.player.StartPlaylist(m.ctx, pl.URI); err != nil {
			return startedMsg{playlist: pl, err: err}
		}
		state, err := m.player.CurrentPlayback(m.ctx)
		return playbackMsg{state: state, err: err}
	}
}

func (m *Model) fetchArtwork(trackID, url string) tea.Cmd {
	return func() tea.Msg {
		data, err := m.player.FetchArtwork(m.ctx, url)
		return artworkMsg{trackID: trackID, data: data, err: err}
	}
}

func (m *Model) recordPlay(track models.Track) tea.Cmd {
	entry := models.PlayEntry{
		TrackID:    track.ID,
		TrackName:  track.Name,
		Artists:    track.ArtistNames(),
		DurationMS: track.DurationMS,
	}
	return func() tea.Msg {
		return recordedMsg{err: m.history.Record(entry)}
	}
}
