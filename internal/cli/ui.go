package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// ui renders status lines. Colour is only emitted when the writer is a
// terminal; buffers and pipes get plain text.
type ui struct {
	pass lipgloss.Style
	warn lipgloss.Style
	fail lipgloss.Style
}

func newUI(w io.Writer) *ui {
	r := lipgloss.NewRenderer(w)
	return &ui{
		pass: r.NewStyle().Foreground(lipgloss.Color("2")),
		warn: r.NewStyle().Foreground(lipgloss.Color("3")),
		fail: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

func (u *ui) RenderPass(msg string) string {
	return u.pass.Render("✓") + " " + msg
}

func (u *ui) RenderWarn(msg string) string {
	return u.warn.Render("!") + " " + msg
}

func (u *ui) RenderFail(msg string) string {
	return u.fail.Render("✗") + " " + msg
}
