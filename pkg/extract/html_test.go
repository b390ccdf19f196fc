package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "paragraphs and inline markup",
			input: `<ms-text-chunk><p>Hello <b>world</b></p><p>Second</p></ms-text-chunk>`,
			want:  "Hello world\nSecond",
		},
		{
			name:  "icons and buttons dropped",
			input: `<div><p>Answer</p><button aria-label="Copy"><mat-icon>content_copy</mat-icon></button><mat-icon>thumb_up</mat-icon></div>`,
			want:  "Answer",
		},
		{
			name:  "scripts and svg dropped",
			input: `<p>Visible</p><script>alert(1)</script><svg><text>icon</text></svg>`,
			want:  "Visible",
		},
		{
			name:  "lists bulleted",
			input: `<ul><li>one</li><li>two</li></ul>`,
			want:  "- one\n- two",
		},
		{
			name:  "preformatted whitespace kept",
			input: "<pre><code>a  b\n  c</code></pre>",
			want:  "a  b\n  c",
		},
		{
			name:  "line breaks",
			input: `first<br>second`,
			want:  "first\nsecond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTMLToText(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
