package pricing

import "testing"

func TestFormatBRL(t *testing.T) {
	cases := map[int]string{
		0:      "R$ 0,00",
		5:      "R$ 0,05",
		2980:   "R$ 29,80",
		123456: "R$ 1234,56",
		-447:   "-R$ 4,47",
	}
	for cents, want := range cases {
		if got := FormatBRL(cents); got != want {
			t.Fatalf("FormatBRL(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestItemCountLabel(t *testing.T) {
	if got := ItemCountLabel(1); got != "1 item" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := ItemCountLabel(0); got != "0 itens" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := ItemCountLabel(3); got != "3 itens" {
		t.Fatalf("unexpected label %q", got)
	}
}
