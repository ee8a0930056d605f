package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the word-wrap width used when the caller passes none.
const DefaultWidth = 100

var (
	mu        sync.Mutex
	styleName = "auto"
	renderers = map[int]*glamour.TermRenderer{}
)

// SetStyle selects the glamour style: "auto", "dark", "light" or "notty".
// Cached renderers are discarded.
func SetStyle(name string) {
	mu.Lock()
	defer mu.Unlock()
	if name == "" {
		name = "auto"
	}
	if name == styleName {
		return
	}
	styleName = name
	renderers = map[int]*glamour.TermRenderer{}
}

func renderer(width int) *glamour.TermRenderer {
	mu.Lock()
	defer mu.Unlock()
	if r, ok := renderers[width]; ok {
		return r
	}
	styleOpt := glamour.WithAutoStyle()
	if styleName != "auto" {
		styleOpt = glamour.WithStandardStyle(styleName)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		// Cache the failure too; Render falls back to raw text.
		r = nil
	}
	renderers[width] = r
	return r
}

// Render converts markdown text to styled ANSI output wrapped at width.
// Falls back to raw text if the renderer is unavailable.
func Render(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	if width <= 0 {
		width = DefaultWidth
	}
	r := renderer(width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// glamour adds surrounding newlines; trim for inline display.
	return strings.Trim(out, "\n")
}

// RenderPartial renders text that is still streaming in, closing any code
// fence that has been opened but not yet terminated.
func RenderPartial(md string, width int) string {
	return Render(CloseFences(md), width)
}

// CloseFences appends a closing fence when md ends inside a ``` or ~~~ block.
func CloseFences(md string) string {
	var open string
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 {
			continue
		}
		marker := fenceMarker(trimmed)
		if marker == "" {
			continue
		}
		switch {
		case open == "":
			open = marker
		case strings.HasPrefix(marker, open[:1]) && len(marker) >= len(open) && strings.TrimSpace(trimmed[len(marker):]) == "":
			open = ""
		}
	}
	if open == "" {
		return md
	}
	if !strings.HasSuffix(md, "\n") {
		md += "\n"
	}
	return md + open
}

// fenceMarker returns the run of ` or ~ opening line, if it is a fence.
func fenceMarker(line string) string {
	if len(line) < 3 || (line[0] != '`' && line[0] != '~') {
		return ""
	}
	n := 0
	for n < len(line) && line[n] == line[0] {
		n++
	}
	if n < 3 {
		return ""
	}
	return line[:n]
}
