package validator

import "testing"

func TestCheckKeepsFirstMessage(t *testing.T) {
	v := New()
	v.Check(false, "name", "must be provided")
	v.Check(false, "name", "must not be more than 500 bytes long")

	if v.Valid() {
		t.Fatal("expected validator to be invalid")
	}
	if got := v.Errors["name"]; got != "must be provided" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWebURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://image.tmdb.org/t/p/w500/poster.jpg", true},
		{"http://localhost:3000/poster.png", true},
		{"ipfs://QmHash", false},
		{"/relative/poster.png", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := WebURL(tt.in); got != tt.want {
			t.Errorf("WebURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEthAddress(t *testing.T) {
	if !Matches("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512", EthAddressRX) {
		t.Fatal("expected hardhat contract address to match")
	}
	if Matches("0xe7f1725E7734CE288F8367e1Bb143E90bb3F05", EthAddressRX) {
		t.Fatal("expected short address to be rejected")
	}
}

func TestIn(t *testing.T) {
	if !In("-year", "year", "-year") {
		t.Fatal("expected -year to be in list")
	}
	if In("owner", "year", "-year") {
		t.Fatal("expected owner not to be in list")
	}
}
