package main

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashKey(t *testing.T) {
	hash, err := hashKey("s3cret-operator")
	if err != nil {
		t.Fatal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-operator")); err != nil {
		t.Errorf("hash does not match key: %v", err)
	}

	if _, err := hashKey(""); err == nil {
		t.Error("expected an error for an empty key")
	}
}

func TestContractAddress(t *testing.T) {
	dir := t.TempDir()
	exported := `{"MovieNFT": "0x5FbDB2315678afecb367f032d93F642f64180aa3"}`
	if err := os.WriteFile(filepath.Join(dir, "contract-address.json"), []byte(exported), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		flag    string
		dir     string
		want    string
		wantErr bool
	}{
		{"flag wins", "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512", dir, "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512", false},
		{"from frontend", "", dir, "0x5FbDB2315678afecb367f032d93F642f64180aa3", false},
		{"bad flag", "0x1234", dir, "", true},
		{"nothing exported", "", t.TempDir(), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := contractAddress(tt.flag, tt.dir)
			if tt.wantErr {
				if err == nil {
					t.Errorf("got %s; want an error", got.Hex())
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Hex() != tt.want {
				t.Errorf("got %s; want %s", got.Hex(), tt.want)
			}
		})
	}
}
