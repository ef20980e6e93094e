package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTag      = regexp.MustCompile(`(?i)</?(?:a|b|i|u|p|br|hr|em|strong|span|div|li|ul|ol|h[1-6]|small|code|pre|table|tr|td|th)(?:\s[^>]*)?/?>`)
	markdownLink = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>()\[\]"']+`)
)

var placeholders = map[string]bool{
	"n/a":           true,
	"na":            true,
	"none":          true,
	"unknown":       true,
	"not specified": true,
	"not available": true,
	"not provided":  true,
	"-":             true,
}

// cleanValue normalizes one field value taken from the model reply.
func cleanValue(f field, raw string) string {
	v := strings.TrimSpace(raw)

	if htmlTag.MatchString(v) {
		text, href := htmlFragment(v)
		if f == fieldLink && href != "" {
			v = href
		} else {
			v = text
		}
	}

	if f == fieldLink {
		if m := markdownLink.FindStringSubmatch(v); m != nil {
			v = m[2]
		}
		if u := urlPattern.FindString(v); u != "" {
			v = strings.TrimRight(u, ".,;:*")
		}
		v = strings.Trim(v, "<>* ")
	} else {
		v = markdownLink.ReplaceAllString(v, "$1")
		v = strings.Trim(v, "*_ ")
	}

	v = strings.Join(strings.Fields(v), " ")
	if placeholders[strings.ToLower(v)] {
		return ""
	}
	return v
}

// htmlFragment returns the visible text of an HTML snippet and the first link target in it.
func htmlFragment(fragment string) (string, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return htmlTag.ReplaceAllString(fragment, " "), ""
	}

	href := strings.TrimSpace(doc.Find("a[href]").First().AttrOr("href", ""))
	return htmlText(doc.Find("body")), href
}

// htmlText walks child nodes in order so block elements and line breaks
// keep words apart.
func htmlText(selection *goquery.Selection) string {
	var result strings.Builder

	selection.Contents().Each(func(i int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			result.WriteString(s.Text())
			return
		}

		switch goquery.NodeName(s) {
		case "br":
			result.WriteString(" ")
		case "script", "style":
		case "li":
			result.WriteString(" • ")
			result.WriteString(htmlText(s))
		case "p", "div", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6":
			result.WriteString(" ")
			result.WriteString(htmlText(s))
			result.WriteString(" ")
		default:
			result.WriteString(htmlText(s))
		}
	})

	return result.String()
}
