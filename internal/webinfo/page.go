package webinfo

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

const (
	descriptionMaxLen = 100
	commentMaxLen     = 100
	hiddenValueMaxLen = 50
)

// Links holds page links split by origin.
type Links struct {
	Internal []string
	External []string
}

// HiddenInput is one hidden form field found on a page.
type HiddenInput struct {
	Name  string
	Value string
}

// Page is the extracted structure of one HTML document.
type Page struct {
	Title        string
	Description  string // meta description, truncated for display
	Links        Links
	HiddenInputs []HiddenInput
	Comments     []string
	Scripts      []string // external script URLs resolved against the base
}

// Analyze tokenizes an HTML document and extracts the parts the recon
// scanner reports: title, meta description, links split by origin,
// hidden form fields, comments, and external script sources. A parse
// that finds nothing returns an empty Page, never an error.
func Analyze(body []byte, baseURL string) *Page {
	page := &Page{}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	z := html.NewTokenizer(bytes.NewReader(body))
	inTitle := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			return page

		case html.TextToken:
			if inTitle && page.Title == "" {
				page.Title = collapse(string(z.Text()))
			}

		case html.CommentToken:
			comment := collapse(string(z.Text()))
			if comment != "" {
				page.Comments = append(page.Comments, truncate(comment, commentMaxLen))
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			attrs := tagAttrs(z, hasAttr)

			switch string(name) {
			case "title":
				inTitle = true
			case "meta":
				if strings.EqualFold(attrs["name"], "description") && attrs["content"] != "" {
					page.Description = truncate(collapse(attrs["content"]), descriptionMaxLen)
				}
			case "a":
				if link, ok := resolveLink(base, attrs["href"]); ok {
					page.addLink(base, link)
				}
			case "input":
				if strings.EqualFold(attrs["type"], "hidden") {
					fieldName := attrs["name"]
					if fieldName == "" {
						fieldName = "unnamed"
					}
					page.HiddenInputs = append(page.HiddenInputs, HiddenInput{
						Name:  fieldName,
						Value: truncate(attrs["value"], hiddenValueMaxLen),
					})
				}
			case "script":
				if link, ok := resolveLink(base, attrs["src"]); ok {
					page.Scripts = append(page.Scripts, link.String())
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = false
			}
		}
	}
}

func (p *Page) addLink(base *url.URL, link *url.URL) {
	full := link.String()
	if base != nil && link.Host == base.Host {
		p.Links.Internal = append(p.Links.Internal, full)
	} else {
		p.Links.External = append(p.Links.External, full)
	}
}

// resolveLink turns a raw href into an absolute URL against the base.
// Non-HTTP URIs and bare anchors are skipped.
func resolveLink(base *url.URL, raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return nil, false
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "data:") {
		return nil, false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return nil, false
	}
	return ref, true
}

func tagAttrs(z *html.Tokenizer, hasAttr bool) map[string]string {
	if !hasAttr {
		return nil
	}
	attrs := make(map[string]string)
	for {
		key, val, more := z.TagAttr()
		attrs[string(key)] = string(val)
		if !more {
			break
		}
	}
	return attrs
}

// collapse squeezes runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
