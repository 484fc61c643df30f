package sqlstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/localsearch"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "sleuth.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() }) //nolint:errcheck // test cleanup
	return s
}

// fakeClock returns a clock that advances one second per call.
func fakeClock() func() time.Time {
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

var testFixture = &Fixture{
	People: []Person{
		{ID: "p1", Name: "Elon Musk", JobTitle: "CEO", Company: "Tesla", Address: "Austin, TX", Phone: "(512) 555-0100"},
		{ID: "p2", Name: "Mihir Doshi", JobTitle: "Engineer", Email: "mihir@example.org"},
		{ID: "p3", Name: "Ada 100%_Lovelace"},
	},
	Documents: []Document{
		{ID: "d1", Text: "Elon Musk - Engineer", Phone: "512 555 0100"},
		{ID: "d2", Text: "Elon Musk - Founder of SpaceX", Location: "Hawthorne"},
	},
}

func TestSeedAndSearchPeople(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	n, err := s.Seed(ctx, testFixture)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 5 {
		t.Errorf("Seed wrote %d rows, want 5", n)
	}

	rows, err := s.People().Search(ctx, localsearch.Query{Terms: []string{"elon musk"}, Type: contact.Name})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []localsearch.Row{{ID: "p1", Origin: "SQLite", Fields: map[string]any{
		"Name": "Elon Musk", "JobTitle": "CEO", "CompanyName": "Tesla",
		"Address": "Austin, TX", "Number": "(512) 555-0100",
	}}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("People().Search mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchTermsAreANDed(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx, testFixture); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		terms []string
		want  []string
	}{
		{"all terms across columns", []string{"Elon", "tesla"}, []string{"p1"}},
		{"one term missing", []string{"Elon", "SpaceX"}, nil},
		{"email column", []string{"mihir@example"}, []string{"p2"}},
		{"like wildcards are literal", []string{"100%_"}, []string{"p3"}},
		{"percent alone is literal", []string{"%"}, []string{"p3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := s.People().Search(ctx, localsearch.Query{Terms: tt.terms, Type: contact.Name})
			if err != nil {
				t.Fatal(err)
			}
			var ids []string
			for _, r := range rows {
				ids = append(ids, r.ID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchDocumentsByPhone(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx, testFixture); err != nil {
		t.Fatal(err)
	}

	rows, err := s.Documents().Search(ctx, localsearch.Query{Terms: []string{"5125550100"}, Type: contact.Phone})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != "d1" || rows[0].Origin != "Documents" {
		t.Errorf("Documents().Search(phone) = %+v, want d1", rows)
	}
	if s.Documents().Name() != "Documents" || s.People().Name() != "SQLite" {
		t.Errorf("source names = %q, %q", s.Documents().Name(), s.People().Name())
	}
}

func TestAggregatorOverStore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx, testFixture); err != nil {
		t.Fatal(err)
	}

	agg := localsearch.New(
		localsearch.WithSource(s.People(), localsearch.ProfileTier),
		localsearch.WithSource(s.Documents(), localsearch.DocumentTier),
	)
	recs := agg.Search(ctx, "Elon Musk", contact.Name)
	var texts []string
	for _, r := range recs {
		texts = append(texts, r.Text)
	}
	want := []string{"Elon Musk - CEO", "Elon Musk - Engineer", "Elon Musk - Founder of SpaceX"}
	if diff := cmp.Diff(want, texts); diff != "" {
		t.Errorf("aggregated texts mismatch (-want +got):\n%s", diff)
	}
	if recs[0].Type != profile.TypeProfile || recs[1].Type != profile.TypeRecord {
		t.Errorf("types = %s, %s", recs[0].Type, recs[1].Type)
	}
}

func TestHistory(t *testing.T) {
	s := setupTestStore(t)
	s.now = fakeClock()
	ctx := context.Background()

	first, err := s.RecordSearch(ctx, profile.HistoryEntry{Name: "Elon Musk", Keyword: "tesla", ResultCount: 3})
	if err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}
	if _, err := s.RecordSearch(ctx, profile.HistoryEntry{Name: "Mihir Doshi"}); err != nil {
		t.Fatal(err)
	}
	again, err := s.RecordSearch(ctx, profile.HistoryEntry{Name: "  elon musk ", Keyword: "spacex", ResultCount: 5})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != first.ID {
		t.Errorf("upsert changed id: %s -> %s", first.ID, again.ID)
	}
	if !again.CreatedAt.Equal(first.CreatedAt) || !again.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("timestamps: created %v/%v updated %v/%v", first.CreatedAt, again.CreatedAt, first.UpdatedAt, again.UpdatedAt)
	}
	if again.Keyword != "spacex" || again.ResultCount != 5 || again.Name != "elon musk" {
		t.Errorf("upserted entry = %+v", again)
	}

	list, err := s.ListHistory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range list {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"elon musk", "Mihir Doshi"}, names); diff != "" {
		t.Errorf("ListHistory order mismatch (-want +got):\n%s", diff)
	}

	if err := s.DeleteHistory(ctx, first.ID); err != nil {
		t.Fatalf("DeleteHistory: %v", err)
	}
	if err := s.DeleteHistory(ctx, first.ID); !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("second DeleteHistory = %v, want ErrNotFound", err)
	}
	if _, err := s.RecordSearch(ctx, profile.HistoryEntry{Name: " "}); !errors.Is(err, profile.ErrQueryRequired) {
		t.Errorf("RecordSearch(blank) = %v, want ErrQueryRequired", err)
	}
}

func TestListHistoryLimit(t *testing.T) {
	s := setupTestStore(t)
	s.now = fakeClock()
	ctx := context.Background()
	for i := range HistoryLimit + 3 {
		if _, err := s.RecordSearch(ctx, profile.HistoryEntry{Name: string(rune('a' + i))}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListHistory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != HistoryLimit {
		t.Fatalf("ListHistory returned %d, want %d", len(list), HistoryLimit)
	}
	if list[0].Name != "m" {
		t.Errorf("newest entry = %q, want m", list[0].Name)
	}
}

func TestSaveFormInfo(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	f, err := s.SaveFormInfo(ctx, profile.FormInfo{Name: " Elon Musk ", Keyword: "tesla"})
	if err != nil {
		t.Fatalf("SaveFormInfo: %v", err)
	}
	if f.ID == "" || f.Name != "Elon Musk" || f.CreatedAt.IsZero() {
		t.Errorf("SaveFormInfo = %+v", f)
	}
	var count int
	if err := s.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM form_info").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("form_info rows = %d, want 1", count)
	}
	if _, err := s.SaveFormInfo(ctx, profile.FormInfo{}); !errors.Is(err, profile.ErrFormInfoRequired) {
		t.Errorf("SaveFormInfo(empty) = %v, want ErrFormInfoRequired", err)
	}
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := `people:
  - name: Elon Musk
    jobTitle: CEO
    phone: "512-555-0100"
documents:
  - text: Elon Musk - Engineer
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	want := &Fixture{
		People:    []Person{{Name: "Elon Musk", JobTitle: "CEO", Phone: "512-555-0100"}},
		Documents: []Document{{Text: "Elon Musk - Engineer"}},
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("LoadFixture mismatch (-want +got):\n%s", diff)
	}
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFixture(missing) succeeded")
	}
}
