package extract

import (
	"regexp"
	"sort"
	"strings"
)

// ThoughtsMarker precedes the collapsed reasoning block some models render
// above the answer.
const ThoughtsMarker = "Expand to view model thoughts"

// Artifacts are UI labels and icon ligatures that leak into scraped text.
var Artifacts = []string{
	"expand_more",
	"expand_less",
	"content_copy",
	"share",
	"edit",
	"thumb_up",
	"thumb_down",
	"Code",
	"JSON",
	"Download",
	"Copy code",
	"Python",
	"JavaScript",
}

var artifactPattern = compileArtifacts(Artifacts)

func compileArtifacts(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	// Longer phrases first so "Copy code" wins over a shorter overlap.
	for _, w := range sortByLength(words) {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func sortByLength(words []string) []string {
	out := append([]string(nil), words...)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) > len(out[j])
	})
	return out
}

// Clean removes UI artifacts from scraped text. Lines made solely of
// artifacts are dropped; on other lines the artifact tokens are removed. Text
// up to the first thoughts marker is discarded.
func Clean(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	if idx := strings.Index(text, ThoughtsMarker); idx >= 0 {
		text = text[idx+len(ThoughtsMarker):]
	}

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			kept = append(kept, "")
			continue
		}
		stripped := artifactPattern.ReplaceAllString(line, "")
		if strings.TrimSpace(stripped) == "" {
			continue
		}
		if stripped != line {
			stripped = collapseSpaces(stripped)
		}
		kept = append(kept, strings.TrimRight(stripped, " \t"))
	}

	return strings.TrimSpace(collapseBlankLines(kept))
}

var multiSpace = regexp.MustCompile(`([^\s])[ \t]{2,}`)

// collapseSpaces squeezes runs of spaces left behind by removed tokens but
// keeps leading indentation.
func collapseSpaces(line string) string {
	return multiSpace.ReplaceAllString(line, "$1 ")
}

func collapseBlankLines(lines []string) string {
	var b strings.Builder
	blank := 0
	for i, line := range lines {
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return b.String()
}

// ContainsArtifact reports whether text still contains a blocklisted token.
func ContainsArtifact(text string) bool {
	return artifactPattern.MatchString(text)
}
