package webfilter

import "regexp"

// providers maps result hosts to provider labels, checked in order.
var providers = []struct {
	label   string
	domains []string
}{
	{"LinkedIn", []string{"linkedin.com"}},
	{"Instagram", []string{"instagram.com"}},
	{"Bumble", []string{"bumble.com"}},
	{"Facebook", []string{"facebook.com"}},
	{"Twitter/X", []string{"twitter.com", "x.com"}},
	{"RocketReach", []string{"rocketreach.co"}},
}

// defaultProvider labels hits from any other host.
const defaultProvider = "Google"

// separators may sit directly next to the target name in a title.
var separators = []string{"-", "|", ":", ",", "·", "•", "(", ")", "[", "]", "@", "–", "—"}

// joinWords may sit next to the target name as a whole word.
var joinWords = map[string]bool{"at": true, "from": true, "for": true, "on": true}

var allowedPrefixes = map[string]bool{
	"mr": true, "mr.": true, "dr": true, "dr.": true, "prof": true,
	"user": true, "member": true, "student": true, "about": true,
	"images": true, "photos": true, "profile": true, "view": true,
	"contact": true, "biography": true, "bio": true, "follow": true,
	"visit": true, "see": true, "meet": true,
}

var allowedSuffixes = map[string]bool{
	"jr": true, "sr": true, "iii": true, "phd": true, "md": true,
	"profile": true, "contact": true, "info": true, "linkedin": true,
	"instagram": true, "facebook": true, "twitter": true, "defined": true,
	"wiki": true, "bio": true, "net": true, "org": true, "com": true,
	"official": true, "page": true, "account": true, "handle": true,
	"connect": true, "following": true,
}

// Directory listings.
var (
	directoryTitlePattern = regexp.MustCompile(`\d+\+? ["'].*["'] profiles`)
	directoryTitles       = []string{"profiles |", "search results", "find people", "people named", "profiles of"}
	directoryLinks        = []string{"/pub/dir/", "/search/"}
	directorySnippets     = []string{"view the profiles of people named", "results found for"}
)

// articlePhrases mark listicles and news. Entries without a space or
// punctuation match whole words only.
var articlePhrases = []string{
	"wants to", "how to", "facts about", "things about", "reasons why",
	"ways to", "tips for", "guide to", "everything you need to know",
	"what you need to know", "here's how", "here's why", "why you should",
	"breaking:", "news:", "report:", "exclusive:", "interview:",
	"says", "announces", "reveals", "just now", "today's", "latest",
}

// noisePhrases mark event coverage, memorials and photo credits.
var noisePhrases = []string{
	"photo by", "photograph by", "congratulations to", "congrats to",
	"proud of", "event", "album", "wedding of", "funeral of",
	"in memory of", "condolences", "article by",
}
