package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spotterm/spotterm/internal/shared"
)

// page is the closed set of views the session controller moves between.
// Each variant owns its key handling and rendering; the controller
// dispatches to whichever page is current.
type page interface {
	handleKey(m *Model, msg tea.KeyMsg) (page, tea.Cmd)
	view(m *Model) string
}

var (
	_ page = playlistPage{}
	_ page = nowPlayingPage{}
)

// playlistPage lists the user's playlists; Enter starts the selection and
// moves to the now-playing page.
type playlistPage struct{}

func (p playlistPage) handleKey(m *Model, msg tea.KeyMsg) (page, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return p, tea.Quit

	case key.Matches(msg, m.keys.enter):
		if !m.listReady {
			return p, nil
		}
		selected := m.list.SelectedItem()
		if selected == nil {
			// Empty collection: Enter is a no-op.
			return p, nil
		}
		item, ok := selected.(playlistItem)
		if !ok {
			return p, nil
		}
		// Transition regardless of whether the play command succeeds.
		return nowPlayingPage{}, m.startPlaylist(item.playlist)
	}

	if !m.listReady {
		return p, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return p, cmd
}

func (p playlistPage) view(m *Model) string {
	if !m.listReady {
		return styles.help.Render("Loading playlists...")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
}

// nowPlayingPage shows the cached snapshot and routes skip commands.
type nowPlayingPage struct{}

func (p nowPlayingPage) handleKey(m *Model, msg tea.KeyMsg) (page, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return p, tea.Quit

	case key.Matches(msg, m.keys.playlists):
		return playlistPage{}, nil

	case key.Matches(msg, m.keys.prev):
		return p, m.skip(m.player.SkipPrevious)

	case key.Matches(msg, m.keys.next):
		return p, m.skip(m.player.SkipNext)
	}

	return p, nil
}

func (p nowPlayingPage) view(m *Model) string {
	title := styles.title.Render("Now Playing")

	track := m.state.Item
	if track == nil {
		body := styles.help.Render("No track playing")
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.playlists, m.keys.quit})
		return fmt.Sprintf("%s\n%s\n\n%s", title, body, helpView)
	}

	name := styles.accent.Render(track.Name)
	artists := NewStyle(spotifyGreen).Render(track.ArtistNames())

	status := "▮▮ paused"
	if m.state.IsPlaying {
		status = "▶ playing"
	}

	ratio := 0.0
	if track.DurationMS > 0 {
		ratio = float64(m.state.ProgressMS) / float64(track.DurationMS)
		if ratio > 1 {
			ratio = 1
		}
	}

	clock := fmt.Sprintf(
		"%s / -%s",
		shared.FormatTrackTime(m.state.ProgressMS),
		shared.FormatTrackTime(track.DurationMS-m.state.ProgressMS),
	)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.prev, m.keys.next, m.keys.playlists, m.keys.quit})

	return fmt.Sprintf(
		"%s\n%s\n%s\n\n%s\n%s  %s\n\n%s",
		title, name, artists,
		m.gauge.ViewAs(ratio),
		clock, styles.help.Render(status),
		helpView,
	)
}
