package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// DefaultStyle is the chroma style used for markdown answers.
const DefaultStyle = "monokai"

// render prints text, highlighting it as markdown when rich output and
// highlighting are both on. Highlight failures fall back to plain text.
func (e *Executor) render(text string) error {
	if e.rich && e.highlight {
		var b strings.Builder
		if err := quick.Highlight(&b, text, "markdown", "terminal256", e.style); err == nil {
			_, err := fmt.Fprintln(e.writer, strings.TrimRight(b.String(), "\n"))
			return err
		}
	}
	_, err := fmt.Fprintln(e.writer, text)
	return err
}
