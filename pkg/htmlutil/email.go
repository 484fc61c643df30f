package htmlutil

import (
	"regexp"
	"strings"
)

// EmailPattern matches local@domain.tld shaped addresses.
var EmailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// commonTLDs are accepted without further checks on the domain.
var commonTLDs = map[string]bool{
	"com": true, "org": true, "net": true, "edu": true, "gov": true, "mil": true,
	"co": true, "io": true, "me": true, "us": true, "uk": true, "ca": true,
	"de": true, "fr": true, "jp": true, "cn": true, "au": true, "nz": true,
	"in": true, "br": true, "ru": true, "it": true, "es": true, "nl": true,
	"sg": true, "ae": true, "pk": true, "bd": true, "lk": true, "np": true,
	"info": true, "biz": true, "dev": true, "app": true, "xyz": true,
	"tech": true, "ai": true, "email": true, "live": true, "mail": true, "pro": true,
}

// EmailAddresses returns the lower-cased, de-duplicated email addresses in
// text, in order of first appearance. Placeholder and bounce addresses,
// image filenames and gibberish domains are dropped.
func EmailAddresses(text string) []string {
	var emails []string
	seen := make(map[string]bool)
	for _, email := range EmailPattern.FindAllString(text, -1) {
		email = strings.ToLower(email)
		if isPlaceholderEmail(email) || !isValidEmailDomain(email) || seen[email] {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}
	return emails
}

func isPlaceholderEmail(email string) bool {
	for _, p := range []string{"noreply@", "no-reply@", "example@"} {
		if strings.HasPrefix(email, p) {
			return true
		}
	}
	for _, s := range []string{"@example.", "@localhost", "@test."} {
		if strings.Contains(email, s) {
			return true
		}
	}
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"} {
		if strings.HasSuffix(email, ext) {
			return true
		}
	}
	return false
}

func isValidEmailDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	parts := strings.Split(email[at+1:], ".")
	if len(parts) < 2 {
		return false
	}
	tld := parts[len(parts)-1]
	if commonTLDs[tld] {
		return true
	}
	if len(tld) < 2 || len(tld) > 6 {
		return false
	}
	return !looksRandom(parts[len(parts)-2]) && !looksRandom(tld)
}

// looksRandom flags strings with no vowels, long consonant runs, or a
// consonant to vowel ratio of 3.5 or more.
func looksRandom(s string) bool {
	if len(s) < 4 {
		return false
	}
	var vowels, consonants, run, maxRun int
	for _, c := range strings.ToLower(s) {
		if c < 'a' || c > 'z' {
			continue
		}
		if strings.ContainsRune("aeiou", c) {
			vowels++
			run = 0
			continue
		}
		consonants++
		run++
		maxRun = max(maxRun, run)
	}
	switch {
	case vowels == 0 && consonants > 3:
		return true
	case maxRun > 4:
		return true
	case vowels > 0 && float64(consonants)/float64(vowels) >= 3.5:
		return true
	}
	return false
}
