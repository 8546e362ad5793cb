package ingestion

import (
	"regexp"
	"strings"
)

var (
	// Regex patterns compiled once at startup
	documentOpenPattern   = regexp.MustCompile(`<document[^>]*>`)
	filePattern           = regexp.MustCompile(`<file[^>]*/>`)
	paragraphOpenPattern  = regexp.MustCompile(`<paragraph[^>]*>`)
	listItemOpenPattern   = regexp.MustCompile(`<list-item[^>]*>`)
	listOpenPattern       = regexp.MustCompile(`<list[^>]*>`)
	blockquoteOpenPattern = regexp.MustCompile(`<blockquote[^>]*>`)
	headingClosePattern   = regexp.MustCompile(`</heading[^>]*>`)
	headingLevelPattern   = regexp.MustCompile(`<heading[^>]*level="(\d+)"[^>]*>`)
	headingOpenPattern    = regexp.MustCompile(`<heading[^>]*>`)
	linkPattern           = regexp.MustCompile(`(?s)<link[^>]*>.*?</link>`)
	linkHrefPattern       = regexp.MustCompile(`href="([^"]+)"`)
	linkTextPattern       = regexp.MustCompile(`>([^<]+)</link>`)
	boldOpenPattern       = regexp.MustCompile(`<bold[^>]*>`)
	italicOpenPattern     = regexp.MustCompile(`<italic[^>]*>`)
	underlineOpenPattern  = regexp.MustCompile(`<underline[^>]*>`)
	anyTagPattern         = regexp.MustCompile(`<[^>]+>`)
	horizontalWSPattern   = regexp.MustCompile(`[ \t]+`)
	headingLevelDigits    = regexp.MustCompile(`level="(\d+)"`)
)

// NormalizeDocument converts forum document markup to plain, readable text
// while preserving structure.
//
// Conversions performed:
//   - <paragraph> → newline-delimited paragraphs
//   - <list>/<list-item> → bullet points (• item)
//   - <bold>/<italic>/<underline> → **text** / *text* / __text__
//   - <blockquote> → quoted block (> text)
//   - <heading level="N"> → leading # markers, repeated N times
//   - <link href="url">text</link> → [text](url)
//   - <break/> → line break
//   - <file .../> → dropped (attachments are handled separately)
//   - remaining tags → stripped, keeping their text content
//   - &amp; &lt; &gt; &quot; &apos; → literal characters
//
// Whitespace is normalized per line (runs of spaces/tabs collapse to one
// space, trailing whitespace trimmed) and surrounding blank lines are removed.
// The function is pure and total: malformed input is stripped best-effort,
// never rejected. Empty input yields empty output.
func NormalizeDocument(markup string) string {
	if markup == "" {
		return ""
	}

	text := markup

	// Remove the document wrapper
	text = documentOpenPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "</document>", "")

	// File tags are dropped; attachments are handled by the scraper
	text = filePattern.ReplaceAllString(text, "")

	// Explicit line breaks
	text = strings.ReplaceAll(text, "<break/>", "\n")
	text = strings.ReplaceAll(text, "<break />", "\n")

	// Paragraphs: closing tag becomes a newline, opening tag is removed
	text = strings.ReplaceAll(text, "</paragraph>", "\n")
	text = paragraphOpenPattern.ReplaceAllString(text, "")

	// List items become bullet points
	text = strings.ReplaceAll(text, "</list-item>", "\n")
	text = listItemOpenPattern.ReplaceAllString(text, "• ")

	// List wrappers are removed but keep the structure
	text = strings.ReplaceAll(text, "</list>", "\n")
	text = listOpenPattern.ReplaceAllString(text, "")

	// Blockquotes become quoted blocks
	text = strings.ReplaceAll(text, "</blockquote>", "\n")
	text = blockquoteOpenPattern.ReplaceAllString(text, "\n> ")

	// Headings: marker repetition matches the heading level
	text = headingClosePattern.ReplaceAllString(text, "\n\n")
	text = headingLevelPattern.ReplaceAllStringFunc(text, func(match string) string {
		level := 2
		if m := headingLevelDigits.FindStringSubmatch(match); m != nil {
			level = 0
			for _, r := range m[1] {
				level = level*10 + int(r-'0')
			}
			if level < 1 {
				level = 1
			}
			if level > 6 {
				level = 6
			}
		}
		return "\n" + strings.Repeat("#", level) + " "
	})
	text = headingOpenPattern.ReplaceAllString(text, "\n## ")

	// Links become [text](url)
	text = linkPattern.ReplaceAllStringFunc(text, replaceLink)

	// Inline emphasis
	text = strings.ReplaceAll(text, "</bold>", "**")
	text = boldOpenPattern.ReplaceAllString(text, "**")
	text = strings.ReplaceAll(text, "</italic>", "*")
	text = italicOpenPattern.ReplaceAllString(text, "*")
	text = strings.ReplaceAll(text, "</underline>", "__")
	text = underlineOpenPattern.ReplaceAllString(text, "__")

	// Strip whatever tags remain, keeping their content
	text = anyTagPattern.ReplaceAllString(text, "")

	// Decode the standard markup entity escapes
	text = decodeEntities(text)

	return normalizeWhitespace(text)
}

// replaceLink converts a single <link> element to [text](url)
func replaceLink(match string) string {
	url := ""
	if m := linkHrefPattern.FindStringSubmatch(match); m != nil {
		url = m[1]
	}
	linkText := url
	if m := linkTextPattern.FindStringSubmatch(match); m != nil {
		linkText = m[1]
	}
	if url == "" {
		return linkText
	}
	return "[" + linkText + "](" + url + ")"
}

// decodeEntities decodes the five standard markup entity escapes
func decodeEntities(text string) string {
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", `"`)
	text = strings.ReplaceAll(text, "&apos;", "'")
	return text
}

// normalizeWhitespace collapses horizontal whitespace runs within each line,
// trims trailing whitespace per line, and trims surrounding blank lines
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		line = horizontalWSPattern.ReplaceAllString(line, " ")
		normalized = append(normalized, strings.TrimRight(line, " "))
	}
	return strings.Trim(strings.Join(normalized, "\n"), "\n")
}
