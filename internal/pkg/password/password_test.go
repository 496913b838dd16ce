package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "secret-password" {
		t.Fatal("hash equals plaintext")
	}
	if !Verify("secret-password", hash) {
		t.Error("Verify() rejected the correct password")
	}
	if Verify("wrong-password", hash) {
		t.Error("Verify() accepted the wrong password")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("refresh-token-a")
	b := HashToken("refresh-token-b")

	if a == b {
		t.Error("different tokens hashed to the same digest")
	}
	if a != HashToken("refresh-token-a") {
		t.Error("token digest is not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"12345678", true},
		{"1234567", false},
		{"", false},
		{"longenoughpassword", true},
	}

	for _, tt := range cases {
		if got := ValidatePassword(tt.password); got != tt.valid {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.valid)
		}
	}
}
