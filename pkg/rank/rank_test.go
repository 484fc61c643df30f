package rank

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		item profile.Item
		want int
	}{
		{
			name: "profile row starting with query",
			item: profile.Item{Text: "Elon Musk - CEO", Priority: 1},
			want: 5 + 3 + 1 + 30,
		},
		{
			name: "document mentioning query twice",
			item: profile.Item{Text: "Notes on elon musk. Elon  Musk again", Priority: 2},
			want: 5 + 2 + 20,
		},
		{
			name: "internet hit without match",
			item: profile.Item{Text: "Tesla news", Priority: 3, Source: profile.SourceInternet},
			want: 10 + 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.item, "elon musk"); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreEmptyQuery(t *testing.T) {
	if got := Score(profile.Item{Text: "anything", Priority: 2}, ""); got != 20 {
		t.Errorf("Score() = %d, want 20", got)
	}
}

func TestRankPriorityDominance(t *testing.T) {
	// Lower priority number wins even with no text match against a strong
	// textual match, because the tier gap (20) exceeds 5+3+matches here.
	items := []profile.Item{
		{Text: "elon musk elon musk", Priority: 3},
		{Text: "unrelated", Priority: 1},
	}
	got := Rank(items, "Elon Musk")
	if got[0].Text != "unrelated" {
		t.Errorf("Rank()[0] = %q, want the priority 1 item", got[0].Text)
	}
}

func TestRankStable(t *testing.T) {
	items := []profile.Item{
		{ID: "a", Text: "first", Priority: 2},
		{ID: "b", Text: "top", Priority: 1},
		{ID: "c", Text: "second", Priority: 2},
		{ID: "d", Text: "third", Priority: 2},
	}
	got := Rank(items, "zzz")
	var ids []string
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	if diff := cmp.Diff([]string{"b", "a", "c", "d"}, ids); diff != "" {
		t.Errorf("Rank() order mismatch (-want +got):\n%s", diff)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	items := []profile.Item{{Text: "b", Priority: 3}, {Text: "a", Priority: 1}}
	_ = Rank(items, "a")
	if items[0].Text != "b" || items[0].Score != 0 {
		t.Errorf("input modified: %+v", items)
	}
}

func TestRankInternetBonus(t *testing.T) {
	items := []profile.Item{
		{ID: "aux", Text: "x", Priority: 3},
		{ID: "web", Text: "x", Priority: 3, Source: profile.SourceInternet},
	}
	got := Rank(items, "q")
	if got[0].ID != "web" || got[0].Score != got[1].Score+5 {
		t.Errorf("Rank() = %+v, want web first with +5", got)
	}
}
