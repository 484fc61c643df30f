// Package contact extracts phone numbers and email addresses from free text
// and classifies search input as a phone number or a name.
package contact

import (
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
)

// InputType classifies a search query.
type InputType string

// Input types.
const (
	Phone InputType = "PHONE"
	Name  InputType = "NAME"
)

// minPhoneDigits is the shortest digit string classified as a phone number.
const minPhoneDigits = 7

// phonePattern matches an optional country code followed by 3-3-4 digit
// groups with optional separators.
var phonePattern = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

// Contacts holds the phone numbers and emails found in a text.
type Contacts struct {
	Phones []string `json:"phones"`
	Emails []string `json:"emails"`
}

// Extract returns the phone numbers (as found) and emails (lower-cased) in text.
// Both lists are de-duplicated; phones are compared by their digits.
func Extract(text string) Contacts {
	var c Contacts
	seen := make(map[string]bool)
	for _, m := range phonePattern.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		key := NormalizePhone(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		c.Phones = append(c.Phones, m)
	}
	c.Emails = htmlutil.EmailAddresses(text)
	return c
}

// NormalizePhone strips every non-digit character from s.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DetectInputType returns Phone when q, after removing spaces, dashes, plus
// signs and parentheses, is all digits and at least seven long.
func DetectInputType(q string) InputType {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '+', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(q))
	if len(stripped) < minPhoneDigits {
		return Name
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return Name
		}
	}
	return Phone
}

// Merge unions phone and email lists, keeping first-seen order. Phones are
// compared by digits and stored digits-only.
func Merge(phones, emails []string, more Contacts) ([]string, []string) {
	seenPhone := make(map[string]bool, len(phones))
	outPhones := make([]string, 0, len(phones)+len(more.Phones))
	for _, p := range append(append([]string{}, phones...), more.Phones...) {
		d := NormalizePhone(p)
		if d == "" || seenPhone[d] {
			continue
		}
		seenPhone[d] = true
		outPhones = append(outPhones, d)
	}
	seenEmail := make(map[string]bool, len(emails))
	outEmails := make([]string, 0, len(emails)+len(more.Emails))
	for _, e := range append(append([]string{}, emails...), more.Emails...) {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seenEmail[e] {
			continue
		}
		seenEmail[e] = true
		outEmails = append(outEmails, e)
	}
	return outPhones, outEmails
}
