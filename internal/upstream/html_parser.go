package upstream

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Error variables for HTML parser errors
var (
	// ErrInvalidXPath is returned when the XPath expression syntax is invalid
	ErrInvalidXPath = errors.New("invalid XPath expression")
	// ErrNoElementFound is returned when no element matches the selector/xpath
	ErrNoElementFound = errors.New("no element found matching selector")
	// ErrNoSelectorOrXPath is returned when neither selector nor xpath is provided
	ErrNoSelectorOrXPath = errors.New("either selector or xpath must be provided")
)

// HTMLParser extracts the version from a fetched download page through a
// CSS selector (goquery) or an XPath expression (htmlquery), with an
// optional regex filter narrowing the matched element's text. Used when
// probing the download page rather than the installer feed.
type HTMLParser struct {
	selector string
	xpath    string
	filter   *regexp.Regexp
}

// NewHTMLParser creates an HTML parser for the selector or xpath; exactly
// the non-empty one is used, selector winning when both are set. The regex
// is compiled up front so a misconfigured probe fails at load time.
func NewHTMLParser(selector, xpath, regex string) (*HTMLParser, error) {
	if selector == "" && xpath == "" {
		return nil, ErrNoSelectorOrXPath
	}

	p := &HTMLParser{
		selector: selector,
		xpath:    xpath,
	}

	if regex != "" {
		re, err := regexp.Compile(regex)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRegexPattern, err)
		}
		p.filter = re
	}

	return p, nil
}

// Parse extracts a version string from HTML content.
func (p *HTMLParser) Parse(content []byte) (string, error) {
	text, err := p.elementText(content)
	if err != nil {
		return "", err
	}

	if p.filter != nil {
		text, err = filterVersionText(p.filter, text)
		if err != nil {
			return "", err
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoVersionFound
	}

	return text, nil
}

// elementText returns the text of the first node the selector or xpath
// matches in the document.
func (p *HTMLParser) elementText(content []byte) (string, error) {
	if p.selector != "" {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML: %w", err)
		}
		selection := doc.Find(p.selector)
		if selection.Length() == 0 {
			return "", fmt.Errorf("%w: %s", ErrNoElementFound, p.selector)
		}
		return selection.First().Text(), nil
	}

	doc, err := htmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	nodes, err := htmlquery.QueryAll(doc, p.xpath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidXPath, err)
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoElementFound, p.xpath)
	}
	return htmlquery.InnerText(nodes[0]), nil
}

// filterVersionText narrows element text with a compiled regex: the first
// capture group when the pattern has one, the whole match otherwise.
func filterVersionText(re *regexp.Regexp, text string) (string, error) {
	matches := re.FindStringSubmatch(text)
	if matches == nil {
		return "", fmt.Errorf("%w: pattern %q did not match text", ErrRegexNoMatch, re.String())
	}

	if len(matches) > 1 && matches[1] != "" {
		return matches[1], nil
	}
	if matches[0] != "" {
		return matches[0], nil
	}

	return "", fmt.Errorf("%w: pattern matched empty string", ErrRegexNoMatch)
}
