// Package display provides user-facing output: banner, byte/bitrate
// formatting, and (later) render-plan and outlier logs.
package display

import (
	"fmt"
	"os"

	"github.com/scenecast/scenecast/internal/term"
)

// PrintBanner prints the scenecast ASCII art logo to stdout, in magenta
// when colors are enabled.
func PrintBanner() {
	if term.Magenta != "" {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, ` ___ ___ ___ _  _ ___ ___ ___  _   ___ _____
/ __/ __| __| \| | __/ __/ _ \/_\ / __|_   _|
\__ \__ \ _|| .` + "`" + ` | _| (_| (_) / _ \\__ \ | |
|___/___/___|_|\_|___\___\___/_/ \_\___/ |_|
`)
	if term.Magenta != "" {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
