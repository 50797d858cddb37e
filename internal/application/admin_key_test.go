package application

import (
	"errors"
	"strings"
	"testing"
)

var testArgon2Params = Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestHashAndVerifyAdminKey(t *testing.T) {
	t.Parallel()

	hash, err := HashAdminKey("s3cret", testArgon2Params)
	if err != nil {
		t.Fatalf("HashAdminKey returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected hash encoding %q", hash)
	}

	if err := VerifyAdminKey(hash, "s3cret"); err != nil {
		t.Fatalf("expected key to verify, got %v", err)
	}
	if err := VerifyAdminKey(hash, "wrong"); !errors.Is(err, ErrInvalidAdminKey) {
		t.Fatalf("expected ErrInvalidAdminKey, got %v", err)
	}

	other, err := HashAdminKey("s3cret", testArgon2Params)
	if err != nil {
		t.Fatalf("HashAdminKey returned error: %v", err)
	}
	if other == hash {
		t.Fatalf("expected random salt to produce distinct hashes")
	}
}

func TestVerifyAdminKey_MalformedHash(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":        "",
		"wrong scheme": "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"bad params":   "$argon2id$v=19$memory$c2FsdA$aGFzaA",
		"bad salt":     "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
	}
	for name, hash := range cases {
		hash := hash
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if err := VerifyAdminKey(hash, "key"); !errors.Is(err, ErrInvalidKeyHash) {
				t.Fatalf("expected ErrInvalidKeyHash, got %v", err)
			}
		})
	}

	if err := VerifyAdminKey("$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$aGFzaA", "key"); !errors.Is(err, ErrIncompatibleKeyVersion) {
		t.Fatalf("expected ErrIncompatibleKeyVersion, got %v", err)
	}
}
