package editor

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// locator is one strategy for finding an element. Strategies run in
// priority order; the first that yields a visible, interactable element
// within its own timeout wins.
type locator struct {
	name    string
	timeout time.Duration
	find    func(p *rod.Page) (*rod.Element, error)
}

// bySelector locates with a CSS selector.
func bySelector(name, selector string, timeout time.Duration) locator {
	return locator{
		name:    name,
		timeout: timeout,
		find: func(p *rod.Page) (*rod.Element, error) {
			return p.Element(selector)
		},
	}
}

// byText locates by selector plus visible-text regexp.
func byText(name, selector, pattern string, timeout time.Duration) locator {
	return locator{
		name:    name,
		timeout: timeout,
		find: func(p *rod.Page) (*rod.Element, error) {
			return p.ElementR(selector, pattern)
		},
	}
}

// locate tries the strategies in order and returns the first visible hit.
// Exhausting every strategy is the driver's per-capability failure signal.
func locate(page *rod.Page, strategies []locator) (*rod.Element, error) {
	for _, s := range strategies {
		el, err := s.find(page.Timeout(s.timeout))
		if err != nil {
			continue
		}
		if visible, err := el.Visible(); err != nil || !visible {
			continue
		}
		return el, nil
	}
	return nil, fmt.Errorf("%w: tried %d strategies", ErrElementNotFound, len(strategies))
}
