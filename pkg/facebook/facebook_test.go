package facebook

import "testing"

func TestIsProfile(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.facebook.com/zuck", true},
		{"https://facebook.com/john.doe.123/", true},
		{"https://m.facebook.com/john.doe", true},
		{"https://www.facebook.com/profile.php?id=100076306083585", true},
		{"https://www.facebook.com/groups/golang", false},
		{"https://www.facebook.com/events", false},
		{"https://www.facebook.com/zuck/photos", false},
		{"https://www.facebook.com/photo.php?fbid=1", false},
		{"https://instagram.com/zuck", false},
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
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.facebook.com/zuck/", "zuck"},
		{"https://www.facebook.com/profile.php?id=100076306083585", "100076306083585"},
	}
	for _, tt := range tests {
		if got := Username(tt.url); got != tt.want {
			t.Errorf("Username(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.facebook.com/zuck/?ref=br_rs", "https://www.facebook.com/zuck"},
		{"https://www.facebook.com/profile.php?id=1000123&ref=br_rs", "https://www.facebook.com/profile.php?id=1000123"},
		{"https://www.Facebook.com/profile.php?id=2000456#about", "https://www.facebook.com/profile.php?id=2000456"},
	}
	for _, tt := range tests {
		if got := CanonicalURL(tt.url); got != tt.want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
