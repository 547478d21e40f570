package migrate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/openjurist/lawgraph/pkg/store"
)

// garbledMarkup builds a markup source carrying the given number of
// ten-space OCR runs.
func garbledMarkup(runs int) string {
	var b strings.Builder
	b.WriteString("<p>start")
	for i := 0; i < runs; i++ {
		b.WriteString(strings.Repeat(" ", 10))
		b.WriteString("x")
	}
	b.WriteString("</p>")
	return b.String()
}

func TestSelectOpinionText(t *testing.T) {
	tests := []struct {
		name       string
		opinion    store.Opinion
		want       string
		wantMarkup bool
	}{
		{
			name: "citations markup wins over html",
			opinion: store.Opinion{
				HTMLWithCitations: "<p>cited</p>",
				HTML:              "<p>raw</p>",
				PlainText:         "plain",
			},
			want:       "<p>cited</p>",
			wantMarkup: true,
		},
		{
			name: "html wins over plain text",
			opinion: store.Opinion{
				HTML:      "<p>raw</p>",
				PlainText: "plain",
			},
			want:       "<p>raw</p>",
			wantMarkup: true,
		},
		{
			name: "plain text as last resort",
			opinion: store.Opinion{
				PlainText: "plain",
			},
			want:       "plain",
			wantMarkup: false,
		},
		{
			name: "garbled markup rejected when plain text exists",
			opinion: store.Opinion{
				HTML:      garbledMarkup(7),
				PlainText: "plain fallback",
			},
			want:       "plain fallback",
			wantMarkup: false,
		},
		{
			name: "garbled markup kept without plain text",
			opinion: store.Opinion{
				HTML: garbledMarkup(7),
			},
			want:       garbledMarkup(7),
			wantMarkup: true,
		},
		{
			name: "six runs are tolerated",
			opinion: store.Opinion{
				HTML:      garbledMarkup(6),
				PlainText: "plain",
			},
			want:       garbledMarkup(6),
			wantMarkup: true,
		},
		{
			name:       "nothing available",
			opinion:    store.Opinion{},
			want:       "",
			wantMarkup: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, markup := selectOpinionText(&tt.opinion)
			if got != tt.want {
				t.Fatalf("unexpected source: got %q, want %q", got, tt.want)
			}
			if markup != tt.wantMarkup {
				t.Fatalf("unexpected markup flag: got %v, want %v", markup, tt.wantMarkup)
			}
		})
	}
}

func TestParagraphs(t *testing.T) {
	tests := []struct {
		name   string
		source string
		markup bool
		want   []string
	}{
		{
			name:   "markup paragraphs",
			source: "<p>First part</p><p>Second part</p>",
			markup: true,
			want:   []string{"First part", "Second part"},
		},
		{
			name:   "markdown links flattened to their text",
			source: "<p>See [Smith v. Jones](https://example.com/smith) below</p>",
			markup: true,
			want:   []string{"See Smith v. Jones below"},
		},
		{
			name:   "standalone paragraph numbers dropped",
			source: "<p>12</p><p>The court held otherwise.</p>",
			markup: true,
			want:   []string{"The court held otherwise."},
		},
		{
			name:   "plain text splits only on very long runs",
			source: "Part one" + strings.Repeat(" ", 30) + "Part two",
			markup: false,
			want:   []string{"Part one", "Part two"},
		},
		{
			name:   "plain text keeps moderate runs",
			source: "Column a" + strings.Repeat(" ", 10) + "column b",
			markup: false,
			want:   []string{"Column a" + strings.Repeat(" ", 10) + "column b"},
		},
		{
			name:   "leading asterisks and underscores cleaned",
			source: "* Starred __paragraph__",
			markup: false,
			want:   []string{"Starred paragraph"},
		},
		{
			name:   "docket references become code spans",
			source: "See Dkt. No. 42 for details",
			markup: false,
			want:   []string{"See `Dkt. No. 42` for details"},
		},
		{
			name:   "blank input yields nothing",
			source: "   \n \n  ",
			markup: false,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paragraphs(tt.source, tt.markup)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("unexpected paragraphs: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldParagraphs(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "short space runs split cluster fields",
			source: "<em>First</em>   second",
			want:   []string{"First", "second"},
		},
		{
			name:   "newlines split too",
			source: "one\ntwo",
			want:   []string{"one", "two"},
		},
		{
			name:   "empty field",
			source: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fieldParagraphs(tt.source)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("unexpected paragraphs: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranscriptParagraphs(t *testing.T) {
	got := transcriptParagraphs("ROBERTS: We will hear argument now.\nKAGAN: Thank you.")
	want := []string{
		"> ### ROBERTS\n>  We will hear argument now.",
		"> ### KAGAN\n>  Thank you.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected transcript: got %q, want %q", got, want)
	}
}
