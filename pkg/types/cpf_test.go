package types

import "testing"

func TestValidCPF(t *testing.T) {
	valid := []string{"529.982.247-25", "52998224725", "111.444.777-35"}
	for _, raw := range valid {
		if !ValidCPF(raw) {
			t.Fatalf("expected %q to be valid", raw)
		}
	}
	invalid := []string{"", "529.982.247-26", "111.111.111-11", "1234567890", "abc"}
	for _, raw := range invalid {
		if ValidCPF(raw) {
			t.Fatalf("expected %q to be invalid", raw)
		}
	}
}

func TestNormalizeCPF(t *testing.T) {
	if got := NormalizeCPF(" 529.982.247-25 "); got != "52998224725" {
		t.Fatalf("unexpected normalized cpf %q", got)
	}
}
