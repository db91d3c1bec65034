package hash

import (
	"errors"
	"strings"
	"testing"
)

// cheap parameters keep the suite fast
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestHashVerify(t *testing.T) {
	h := NewHasher(testParams)

	encoded, err := h.Hash("ice-bath-2025")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("Hash() = %q, unexpected prefix", encoded)
	}

	tests := []struct {
		password string
		want     bool
	}{
		{password: "ice-bath-2025", want: true},
		{password: "ice-bath-2024", want: false},
		{password: "", want: false},
	}
	for _, tt := range tests {
		got, err := h.Verify(tt.password, encoded)
		if err != nil {
			t.Fatalf("Verify(%q) error = %v", tt.password, err)
		}
		if got != tt.want {
			t.Fatalf("Verify(%q) = %v want %v", tt.password, got, tt.want)
		}
	}
}

func TestHashSaltsDiffer(t *testing.T) {
	h := NewHasher(testParams)
	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatalf("two hashes of the same password are identical")
	}
}

func TestVerifyMalformed(t *testing.T) {
	h := NewHasher(testParams)
	tests := []struct {
		name    string
		encoded string
		want    error
	}{
		{name: "empty", encoded: "", want: ErrInvalidHash},
		{name: "bcrypt", encoded: "$2a$10$abcdefghijklmnopqrstuv", want: ErrInvalidHash},
		{name: "wrong version", encoded: "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5", want: ErrIncompatibleVersion},
		{name: "bad salt", encoded: "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5", want: ErrInvalidHash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.Verify("x", tt.encoded); !errors.Is(err, tt.want) {
				t.Fatalf("Verify() error = %v want %v", err, tt.want)
			}
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	old := NewHasher(testParams)
	encoded, _ := old.Hash("pw")

	if old.NeedsRehash(encoded) {
		t.Fatalf("NeedsRehash() = true for matching params")
	}
	stronger := testParams
	stronger.Iterations = 2
	if !NewHasher(stronger).NeedsRehash(encoded) {
		t.Fatalf("NeedsRehash() = false after iteration change")
	}
}
