package fetch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	ErrNoContainer = errors.New("content container not found")
	ErrEmptyText   = errors.New("extracted text is empty")
)

// Selector names the element holding the article body.
type Selector struct {
	Tag   string
	Class string
}

var DefaultArticleSelector = Selector{Tag: "div", Class: "tm-article-body"}

var (
	sanitizer  = bluemonday.UGCPolicy()
	blankLines = regexp.MustCompile(`\n{3,}`)
)

func ArticleExtractor(sel Selector) Extractor {
	return func(body []byte) (string, error) {
		return ExtractText(body, sel)
	}
}

// ExtractText returns the visible text of the first element matching sel.
// The tree parser is tried first; the tokenizer only runs when it fails.
func ExtractText(body []byte, sel Selector) (string, error) {
	fragment, err := containerFromTree(body, sel)
	if err != nil && !errors.Is(err, ErrNoContainer) {
		fragment, err = containerFromTokens(body, sel)
	}
	if err != nil {
		return "", err
	}

	text, err := html2text.FromString(sanitizer.Sanitize(fragment), html2text.Options{OmitLinks: true})
	if err != nil {
		return "", fmt.Errorf("failed to render text: %w", err)
	}

	text = strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func containerFromTree(body []byte, sel Selector) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("html parse: %w", err)
	}

	node := findNode(doc, sel)
	if node == nil {
		return "", ErrNoContainer
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", fmt.Errorf("html render: %w", err)
	}
	return buf.String(), nil
}

func findNode(n *html.Node, sel Selector) *html.Node {
	if n.Type == html.ElementNode && n.Data == sel.Tag && hasClass(getAttr(n.Attr, "class"), sel.Class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, sel); found != nil {
			return found
		}
	}
	return nil
}

// containerFromTokens scans the raw token stream and copies the matching
// element verbatim, tracking nesting of the same tag.
func containerFromTokens(body []byte, sel Selector) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(body))
	var buf bytes.Buffer
	depth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if depth > 0 {
				// Unterminated container: keep what was read.
				return buf.String(), nil
			}
			if errors.Is(z.Err(), io.EOF) {
				return "", ErrNoContainer
			}
			return "", fmt.Errorf("html tokenize: %w", z.Err())
		}

		raw := append([]byte(nil), z.Raw()...)

		switch tt {
		case html.StartTagToken:
			tok := z.Token()
			if depth > 0 {
				if tok.Data == sel.Tag {
					depth++
				}
				buf.Write(raw)
				continue
			}
			if tok.Data == sel.Tag && hasClass(getAttr(tok.Attr, "class"), sel.Class) {
				depth = 1
				buf.Write(raw)
			}
		case html.EndTagToken:
			if depth == 0 {
				continue
			}
			buf.Write(raw)
			if name, _ := z.TagName(); string(name) == sel.Tag {
				depth--
				if depth == 0 {
					return buf.String(), nil
				}
			}
		default:
			if depth > 0 {
				buf.Write(raw)
			}
		}
	}
}

func getAttr(attrs []html.Attribute, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(classAttr, class string) bool {
	if class == "" {
		return true
	}
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}
