// Package scrub clears the text content of targeted XML elements.
package scrub

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ParseError reports that the input bytes are not well-formed XML.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse xml: %v", e.Err)
	}
	return "parse xml: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// DefaultTags returns the tag names cleared by default.
func DefaultTags() []string {
	return []string{"Code", "Description"}
}

// Scrubber blanks the directly-owned text of every element whose local tag
// name is in the target set. It holds no state across calls and is safe for
// concurrent use.
type Scrubber struct {
	targets map[string]bool
}

// New creates a Scrubber for the given tag names. Matching is case-sensitive
// and ignores namespace prefixes, so "Code" matches both <Code> and <ns0:Code>.
func New(tags []string) *Scrubber {
	targets := make(map[string]bool, len(tags))
	for _, t := range tags {
		targets[t] = true
	}
	return &Scrubber{targets: targets}
}

// Clean parses raw as XML, clears the text of every targeted element, and
// returns the re-serialized document. The second return value counts targeted
// elements that actually carried non-whitespace text. Tree shape, attributes
// and child elements are preserved; only directly-owned character data of
// matched elements is removed.
func (s *Scrubber) Clean(raw []byte) ([]byte, int, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	doc.ReadSettings.PreserveCData = true
	// Empty targets serialize as <Code></Code>, not <Code/>.
	doc.WriteSettings.CanonicalEndTags = true

	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, 0, &ParseError{Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, 0, &ParseError{Reason: "no root element"}
	}

	cleared := s.clearTree(root)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, 0, fmt.Errorf("serialize xml: %w", err)
	}
	return out, cleared, nil
}

// clearTree walks el depth-first in document order and clears matched
// elements. Returns the number of elements that had text to clear.
func (s *Scrubber) clearTree(el *etree.Element) int {
	cleared := 0
	if s.targets[el.Tag] && clearText(el) {
		cleared++
	}
	for _, child := range el.ChildElements() {
		cleared += s.clearTree(child)
	}
	return cleared
}

// clearText removes all character-data children of el, leaving child elements
// in place. Returns true if any removed chunk was non-whitespace.
func clearText(el *etree.Element) bool {
	var texts []etree.Token
	hadText := false
	for _, child := range el.Child {
		cd, ok := child.(*etree.CharData)
		if !ok {
			continue
		}
		texts = append(texts, cd)
		if strings.TrimSpace(cd.Data) != "" {
			hadText = true
		}
	}
	for _, t := range texts {
		el.RemoveChild(t)
	}
	return hadText
}

// charsetReader decodes documents whose XML declaration names a non-UTF-8
// charset (the feeds arrive in iso-8859-1 and windows-1252 as well as utf-8).
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
