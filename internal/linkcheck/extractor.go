// Package linkcheck verifies internal links and fragments of the rendered site.
package linkcheck

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

// Link is a URL referenced by a rendered page.
type Link struct {
	URL       string
	Tag       string
	Attribute string
	Internal  bool
}

// Page is what the checker needs from one rendered document.
type Page struct {
	Links []Link
	IDs   map[string]bool
}

// Extract parses HTML and returns its links and element ids. Links on a
// host other than base's are marked external.
func Extract(r io.Reader, base *url.URL) (Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Page{}, derrors.WrapError(err, derrors.CategoryValidation, "failed to parse HTML").Build()
	}
	p := Page{IDs: map[string]bool{}}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := getAttr(n, "id"); id != "" {
				p.IDs[id] = true
			}
			if attr := linkAttr(n.Data); attr != "" {
				if v := strings.TrimSpace(getAttr(n, attr)); v != "" {
					p.Links = append(p.Links, Link{URL: v, Tag: n.Data, Attribute: attr, Internal: isInternalLink(v, base)})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return p, nil
}

func linkAttr(tag string) string {
	switch tag {
	case "a", "link":
		return "href"
	case "img", "script":
		return "src"
	}
	return ""
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// isInternalLink reports whether linkURL points into the site. mailto:,
// tel: and javascript: links are neither and report false.
func isInternalLink(linkURL string, base *url.URL) bool {
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(linkURL, scheme) {
			return false
		}
	}
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return true
	}
	return base != nil && base.Host != "" && u.Host == base.Host
}
