package hash

import "testing"

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h == "secret1" {
		t.Fatal("hash equals plaintext")
	}
	if !Check(h, "secret1") {
		t.Error("correct password rejected")
	}
	if Check(h, "secret2") {
		t.Error("wrong password accepted")
	}
	if Check("", "secret1") {
		t.Error("empty hash accepted")
	}
}
