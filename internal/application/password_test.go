package application

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	t.Run("encodes the policy into the hash", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery", DefaultPasswordPolicy)
		if err != nil {
			t.Fatalf("HashPassword returned error: %v", err)
		}
		if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=4,p=2$") {
			t.Fatalf("unexpected hash prefix: %q", hash)
		}
	})

	t.Run("salts each hash independently", func(t *testing.T) {
		first, err := HashPassword("correct horse battery", DefaultPasswordPolicy)
		if err != nil {
			t.Fatalf("HashPassword returned error: %v", err)
		}
		second, err := HashPassword("correct horse battery", DefaultPasswordPolicy)
		if err != nil {
			t.Fatalf("HashPassword returned error: %v", err)
		}
		if first == second {
			t.Fatalf("expected distinct salts, got identical hashes")
		}
	})
}

func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery", DefaultPasswordPolicy)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	t.Run("accepts the original password", func(t *testing.T) {
		if err := ComparePassword(hash, "correct horse battery"); err != nil {
			t.Fatalf("ComparePassword returned error: %v", err)
		}
	})

	t.Run("rejects a wrong password as invalid credentials", func(t *testing.T) {
		if err := ComparePassword(hash, "incorrect horse battery"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("uses the parameters recorded in the stored hash", func(t *testing.T) {
		light := PasswordPolicy{MemoryKiB: 8 * 1024, Passes: 1, Parallelism: 1, SaltBytes: 16, KeyBytes: 32}
		lightHash, err := HashPassword("correct horse battery", light)
		if err != nil {
			t.Fatalf("HashPassword returned error: %v", err)
		}
		if err := ComparePassword(lightHash, "correct horse battery"); err != nil {
			t.Fatalf("ComparePassword returned error: %v", err)
		}
	})

	t.Run("rejects malformed hashes", func(t *testing.T) {
		for _, stored := range []string{
			"",
			"plaintext",
			"$argon2i$v=19$m=65536,t=4,p=2$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=65536,t=4,p=2$not!base64$aGFzaA",
		} {
			if err := ComparePassword(stored, "whatever"); !errors.Is(err, ErrMalformedPasswordHash) {
				t.Fatalf("expected ErrMalformedPasswordHash for %q, got %v", stored, err)
			}
		}
	})

	t.Run("rejects an unsupported hash generation", func(t *testing.T) {
		stored := "$argon2id$v=18$m=65536,t=4,p=2$c2FsdA$aGFzaA"
		if err := ComparePassword(stored, "whatever"); !errors.Is(err, ErrPasswordHashGeneration) {
			t.Fatalf("expected ErrPasswordHashGeneration, got %v", err)
		}
	})
}
