package banner

import (
	"paramload/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	ascii := `
                                  __                __
    ____  ____ __________ _____ _/ /___  ____ _____/ /
   / __ \/ __ '/ ___/ __ '/ __ '__ / __ \/ __ '/ __  / 
  / /_/ / /_/ / /  / /_/ / / / / / / /_/ / /_/ / /_/ /  
 / .___/\__,_/_/   \__,_/_/ /_/ /_/\____/\__,_/\__,_/   
/_/                                                     `

	return "\n" + style.Render(ascii) + "\n"
}
