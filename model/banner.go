package model

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/osa-chat/style"
)

// BannerModel renders the one-line header:
//
//	osa-chat dev · ws://localhost:8000/ws/chat · resumed 3f2a9c1e
type BannerModel struct {
	version  string
	endpoint string
	previous string // session id left by the previous run
	width    int
}

// NewBanner returns a BannerModel for version.
func NewBanner(version string) BannerModel {
	if version == "" {
		version = "dev"
	}
	return BannerModel{version: version}
}

// SetEndpoint sets the chat endpoint shown in the header.
func (m *BannerModel) SetEndpoint(url string) { m.endpoint = url }

// SetPrevious sets the session identifier read at startup.
func (m *BannerModel) SetPrevious(id string) { m.previous = id }

// SetWidth constrains the header to the terminal width.
func (m *BannerModel) SetWidth(w int) { m.width = w }

// View renders the header line.
func (m BannerModel) View() string {
	sep := style.Faint.Render(" · ")
	line := style.HeaderTitle.Render("osa-chat " + m.version)
	if m.endpoint != "" {
		line += sep + style.HeaderDetail.Render(m.endpoint)
	}
	if m.previous != "" {
		line += sep + style.Hint.Render("last session "+shortID(m.previous))
	}
	if m.width > 0 && lipgloss.Width(line) > m.width {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}
