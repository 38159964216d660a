package match

import "testing"

func TestNormalizeResult(t *testing.T) {
	t.Parallel()

	cases := map[string]Result{
		"win":      ResultWin,
		" WON ":    ResultWin,
		"loss":     ResultLoss,
		"lost":     ResultLoss,
		"":         ResultPending,
		"ongoing":  ResultPending,
		"finished": ResultPending,
	}
	for raw, want := range cases {
		if got := NormalizeResult(raw); got != want {
			t.Fatalf("expected %q for %q, got=%q", want, raw, got)
		}
	}
}

func TestBuildTitle(t *testing.T) {
	t.Parallel()

	if got := BuildTitle("Elemental", "Nova"); got != "Elemental vs Nova" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := BuildTitle("Elemental", " "); got != "Elemental vs TBD" {
		t.Fatalf("unexpected title for empty opponent: %q", got)
	}
}
