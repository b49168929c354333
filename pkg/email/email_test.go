package email

import "testing"

func TestValid(t *testing.T) {
	valid := []string{"a@b.com", "ana.diaz@example.org", "u+tag@x.co"}
	for _, addr := range valid {
		if !Valid(addr) {
			t.Errorf("expected %q to be valid", addr)
		}
	}

	invalid := []string{"", "not-an-email", "a@b", "a b@c.com", "@x.com", "a@.com "}
	for _, addr := range invalid {
		if Valid(addr) {
			t.Errorf("expected %q to be invalid", addr)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Ana@Example.COM "); got != "Ana@example.com" {
		t.Fatalf("unexpected normalized address: %q", got)
	}
	if got := Normalize("no-at-sign"); got != "no-at-sign" {
		t.Fatalf("expected addresses without @ to pass through, got %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("Ana", "Diaz"); got != "Ana Diaz" {
		t.Fatalf("unexpected display name: %q", got)
	}
}
