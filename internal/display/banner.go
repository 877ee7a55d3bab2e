package display

import (
	"fmt"
	"io"

	"github.com/backmassage/playerops/internal/term"
)

// PrintBanner prints the ASCII art banner to w; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, `       _                                   
 _ __ | | __ _ _   _  ___ _ __ ___  _ __  ___
| '_ \| |/ _`+"`"+` | | | |/ _ \ '__/ _ \| '_ \/ __|
| |_) | | (_| | |_| |  __/ | | (_) | |_) \__ \
| .__/|_|\__,_|\__, |\___|_|  \___/| .__/|___/
|_|            |___/               |_|
`)
	fmt.Fprintln(w, term.NC)
}
