package profile

import (
	"strings"
	"testing"
)

type fakePlatform struct {
	name     string
	priority int
	domain   string
}

func (f fakePlatform) Name() string          { return f.name }
func (f fakePlatform) Priority() int         { return f.priority }
func (f fakePlatform) Match(url string) bool { return strings.Contains(url, f.domain) }
func (fakePlatform) IsProfile(string) bool   { return true }
func (fakePlatform) Username(string) string  { return "" }

func TestRegistryOrdersByPriority(t *testing.T) {
	registryMu.Lock()
	saved, savedByName := registry, byName
	registry, byName = nil, make(map[string]Platform)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		registry, byName = saved, savedByName
		registryMu.Unlock()
	})

	Register(fakePlatform{name: "B", priority: 2, domain: "b.example"})
	Register(fakePlatform{name: "A", priority: 1, domain: "a.example"})

	ps := Platforms()
	if len(ps) != 2 || ps[0].Name() != "A" || ps[1].Name() != "B" {
		t.Fatalf("Platforms() order = %v, want [A B]", ps)
	}
	if p := MatchURL("https://b.example/x"); p == nil || p.Name() != "B" {
		t.Errorf("MatchURL() = %v, want B", p)
	}
	if p := MatchURL("https://none.example/x"); p != nil {
		t.Errorf("MatchURL() = %v, want nil", p)
	}
	if LookupPlatform("A") == nil {
		t.Error("LookupPlatform(A) = nil")
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register(fakePlatform{name: "A", priority: 9})
}

func TestRecordItem(t *testing.T) {
	r := Record{Text: "Elon Musk - CEO", Name: "Elon Musk", Image: "https://img/x.jpg", Source: "SQLite", Priority: PriorityProfile, Type: TypeProfile}
	it := r.Item()
	if it.Text != r.Text || it.Priority != 1 || it.Source != "SQLite" || len(it.Images) != 1 {
		t.Errorf("Record.Item() = %+v", it)
	}
	if got := (Record{}).Item().Images; got != nil {
		t.Errorf("empty image projected to %v, want nil", got)
	}
}
