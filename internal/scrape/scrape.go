// Package scrape holds read-only classifiers over HTML captured from the
// booking page. Keeping them pure (bytes in, answer out) keeps the
// browser driver out of the code that decides what the page means.
package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CountByTitle counts class cards whose title attribute contains name.
// Cards render as h3 elements titled with the full class name; the
// occurrence index in the schedule refers to their document order.
func CountByTitle(html, name string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("parse page: %w", err)
	}
	count := 0
	doc.Find("h3[title]").Each(func(_ int, s *goquery.Selection) {
		if title, ok := s.Attr("title"); ok && strings.Contains(title, name) {
			count++
		}
	})
	return count, nil
}

// ConfirmationShown reports whether the page shows the textual
// "Booking confirmed" indicator the site renders after a successful
// booking. Used as the fallback confirmation channel when the booking
// API response never arrives.
func ConfirmationShown(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return strings.Contains(doc.Text(), "Booking confirmed")
}
