package banner

import (
	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(lipgloss.Color("#7D56F4")).
		Bold(true)

	ascii := `
                               _     _           _
  __ _ _   _  ___ _ __ _   _  | |__ | | __ _ ___| |_
 / _  | | | |/ _ \ '__| | | | | '_ \| |/ _  / __| __|
| (_| | |_| |  __/ |  | |_| | | |_) | | (_| \__ \ |_
 \__, |\__,_|\___|_|   \__, | |_.__/|_|\__,_|___/\__|
    |_|                |___/                         `

	return "\n" + style.Render(ascii) + "\n"
}
