package formfill

import (
	"fmt"
	"io"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Event is a synthetic DOM event dispatched on an input element.
type Event struct {
	Type    string
	Bubbles bool
	Target  string
	Value   string
}

// Page is a loaded HTML document whose inputs can be filled.
type Page struct {
	mu     sync.Mutex
	doc    *goquery.Document
	events []Event
}

// LoadPage parses an HTML document.
func LoadPage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{doc: doc}, nil
}

// Inputs returns the input elements matching selector, in document order.
func (p *Page) Inputs(selector string) *goquery.Selection {
	return p.doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == "input"
	})
}

// SetInputValue writes value through the element's value attribute and then
// dispatches a bubbling input event, which is what framework-managed inputs
// listen for. Assigning the value alone is not observed.
func (p *Page) SetInputValue(input *goquery.Selection, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	input.SetAttr("value", value)
	p.events = append(p.events, Event{
		Type:    "input",
		Bubbles: true,
		Target:  describe(input),
		Value:   value,
	})
}

// Events returns the events dispatched so far.
func (p *Page) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// HTML renders the current document.
func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return goquery.OuterHtml(p.doc.Selection)
}

func describe(s *goquery.Selection) string {
	if id, ok := s.Attr("id"); ok && id != "" {
		return "#" + id
	}
	if name, ok := s.Attr("name"); ok && name != "" {
		return fmt.Sprintf("input[name=%q]", name)
	}
	if ac, ok := s.Attr("autocomplete"); ok {
		return fmt.Sprintf("input[autocomplete=%q]", ac)
	}
	return "input"
}
