package migrate

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/openjurist/lawgraph/internal/util"
	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/store"
)

var (
	largeSpaceRun    = regexp.MustCompile(` {10,}`)
	markupParaSplit  = regexp.MustCompile(` {7,}|\r?\n|\f+`)
	plainParaSplit   = regexp.MustCompile(` {30,}|\r?\n|\f+`)
	markdownLink     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	paragraphNumber  = regexp.MustCompile(`(?m)^\d+\n`)
	escapedBackslash = regexp.MustCompile(`\\\s*`)
	docketNumberRef  = regexp.MustCompile(`(Dkt\. No\. \d+)`)
	strayUnderscores = regexp.MustCompile(`_+`)
	blankRun         = regexp.MustCompile(`\n\s*\n`)
	leadingAsterisk  = regexp.MustCompile(`(?m)^\*\s*`)
	fieldParaSplit   = regexp.MustCompile(` {3,}|\r?\n|\f+`)
	nameListSplit    = regexp.MustCompile(`[\s,]+`)
	speakerTurn      = regexp.MustCompile(`(\w+):`)
	transcriptLine   = regexp.MustCompile(`\n([^\n]+)`)
)

// countLargeSpaceRuns counts runs of 10 or more consecutive spaces. OCR
// artifacts in markup sources show up as many such runs.
func countLargeSpaceRuns(s string) int {
	return len(largeSpaceRun.FindAllString(s, -1))
}

// markupUsable reports whether a markup text source should be used. A
// source riddled with large space runs is rejected when a plain-text
// fallback exists.
func markupUsable(source, plainText string) bool {
	if source == "" {
		return false
	}
	return countLargeSpaceRuns(source) < 7 || plainText == ""
}

// selectOpinionText picks the best available text source for an opinion.
// Markup sources are preferred in a fixed priority order; plain text is
// the last resort. The second result reports whether the chosen source
// carries markup.
func selectOpinionText(o *store.Opinion) (string, bool) {
	markupSources := []string{
		o.HTMLWithCitations,
		o.HTML,
		o.HTMLLawbox,
		o.HTMLAnon2020,
		o.XMLHarvard,
		o.HTMLColumbia,
	}
	for _, source := range markupSources {
		if markupUsable(source, o.PlainText) {
			return source, true
		}
	}
	if o.PlainText != "" {
		return o.PlainText, false
	}
	return "", false
}

// markupToText flattens an HTML or XML fragment to its visible text,
// dropping script and style subtrees.
func markupToText(markup string) string {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		// Block-level boundaries become paragraph breaks.
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre":
				b.WriteString("\n")
			}
		}
	}
	walk(root)
	return b.String()
}

// cleanLegalText normalizes one paragraph of extracted opinion text.
func cleanLegalText(text string) string {
	text = util.SanitizeText(text)
	text = escapedBackslash.ReplaceAllString(text, "")
	text = docketNumberRef.ReplaceAllString(text, "`$1`")
	text = strings.ReplaceAll(text, `\[`, "[")
	text = strings.ReplaceAll(text, `\]`, "]")
	text = strayUnderscores.ReplaceAllString(text, "")
	text = blankRun.ReplaceAllString(text, "\n\n")
	text = leadingAsterisk.ReplaceAllString(text, "")
	return text
}

// paragraphs turns a text source into cleaned, non-empty paragraphs.
// Markup sources are flattened first and split on short space runs; plain
// text keeps moderate runs intact and splits only on very long ones.
func paragraphs(source string, markup bool) []string {
	split := plainParaSplit
	if markup {
		source = markupToText(source)
		split = markupParaSplit
	}
	source = paragraphNumber.ReplaceAllString(source, "")

	var out []string
	for _, part := range split.Split(source, -1) {
		part = markdownLink.ReplaceAllString(part, "$1")
		part = cleanLegalText(part)
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// fieldParagraphs splits one markup field of a cluster record (syllabus,
// headnotes and the like) into cleaned paragraphs. These fields split on
// much shorter space runs than opinion bodies.
func fieldParagraphs(source string) []string {
	source = markupToText(source)

	var out []string
	for _, part := range fieldParaSplit.Split(source, -1) {
		part = markdownLink.ReplaceAllString(part, "$1")
		part = cleanLegalText(part)
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// transcriptParagraphs formats a speech-to-text transcript: speaker names
// become headings and their lines become quoted paragraphs.
func transcriptParagraphs(transcript string) []string {
	text := speakerTurn.ReplaceAllString(transcript, "\n### $1\n")
	text = transcriptLine.ReplaceAllString(text, "\n> $1")
	text = strings.TrimSpace(text)

	var out []string
	for _, part := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// contentBlocks emits one ordered text block per paragraph, attached to
// the given entity.
func contentBlocks(fromID string, parts []string) []graph.Op {
	var ops []graph.Op
	var stream graph.PositionStream
	for _, part := range parts {
		ops = append(ops, graph.MakeTextBlock(fromID, part, stream.Next())...)
	}
	return ops
}
