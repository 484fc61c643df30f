package twitter

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://twitter.com/johndoe", true},
		{"https://x.com/johndoe", true},
		{"https://www.twitter.com/johndoe", true},
		{"x.com/johndoe", true},
		{"https://TWITTER.COM/johndoe", true},
		{"https://linkedin.com/in/johndoe", false},
		{"https://dropbox.com/johndoe", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Match(tt.url); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsProfile(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://twitter.com/elonmusk", true},
		{"https://x.com/elonmusk/", true},
		{"https://x.com/elonmusk?lang=en", true},
		{"https://x.com/elonmusk/status/123", false},
		{"https://x.com/search?q=elon", false},
		{"https://twitter.com/hashtag", false},
		{"x.com/elonmusk", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsProfile(tt.url); got != tt.want {
				t.Errorf("IsProfile(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestUsername(t *testing.T) {
	if got := Username("https://x.com/elonmusk/"); got != "elonmusk" {
		t.Errorf("Username() = %q, want %q", got, "elonmusk")
	}
}
