package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Styles render fcmm's highlighted terms.
type Styles struct {
	renderer *lipgloss.Renderer
}

// NewStyles picks the colour profile of w. Writers that are not a terminal get plain text.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	if !IsTerminal(w) {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Styles{renderer: r}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Branch styles a branch name
func (s *Styles) Branch(name string) string {
	return s.renderer.NewStyle().Foreground(lipgloss.Color("6")).Render(name)
}

// Tag styles a tag name
func (s *Styles) Tag(name string) string {
	return s.renderer.NewStyle().Foreground(lipgloss.Color("3")).Render(name)
}

// Success styles a success message
func (s *Styles) Success(text string) string {
	return s.renderer.NewStyle().Foreground(lipgloss.Color("2")).Render(text)
}

// Failure styles a failure message
func (s *Styles) Failure(text string) string {
	return s.renderer.NewStyle().Foreground(lipgloss.Color("1")).Render(text)
}

// Heading styles a table heading
func (s *Styles) Heading(text string) string {
	return s.renderer.NewStyle().Bold(true).Render(text)
}
