package application

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrMalformedPasswordHash  = errors.New("malformed password hash")
	ErrPasswordHashGeneration = errors.New("unsupported password hash generation")
)

// PasswordPolicy holds the argon2id cost parameters an account password is
// hashed with. The parameters are encoded into the hash string, so the policy
// can be tightened later without invalidating existing accounts.
type PasswordPolicy struct {
	MemoryKiB   uint32
	Passes      uint32
	Parallelism uint8
	SaltBytes   uint32
	KeyBytes    uint32
}

// DefaultPasswordPolicy is the policy applied to new registrations.
var DefaultPasswordPolicy = PasswordPolicy{
	MemoryKiB:   64 * 1024,
	Passes:      4,
	Parallelism: 2,
	SaltBytes:   16,
	KeyBytes:    32,
}

// HashPassword derives an argon2id hash under the given policy and encodes it
// in the PHC string format: $argon2id$v=19$m=...,t=...,p=...$salt$key.
func HashPassword(password string, policy PasswordPolicy) (string, error) {
	salt := make([]byte, policy.SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, policy.Passes, policy.MemoryKiB, policy.Parallelism, policy.KeyBytes)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		policy.MemoryKiB, policy.Passes, policy.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// ComparePassword re-derives the key from the candidate password using the
// parameters recorded in the stored hash and compares in constant time.
// A mismatch returns ErrInvalidCredentials so callers treat a wrong password
// and an unknown account identically.
func ComparePassword(storedHash, password string) error {
	policy, salt, key, err := decodePasswordHash(storedHash)
	if err != nil {
		return err
	}

	candidate := argon2.IDKey([]byte(password), salt, policy.Passes, policy.MemoryKiB, policy.Parallelism, policy.KeyBytes)
	if subtle.ConstantTimeCompare(key, candidate) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func decodePasswordHash(encoded string) (PasswordPolicy, []byte, []byte, error) {
	var policy PasswordPolicy

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return policy, nil, nil, ErrMalformedPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return policy, nil, nil, ErrMalformedPasswordHash
	}
	if version != argon2.Version {
		return policy, nil, nil, ErrPasswordHashGeneration
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &policy.MemoryKiB, &policy.Passes, &policy.Parallelism); err != nil {
		return policy, nil, nil, ErrMalformedPasswordHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return policy, nil, nil, ErrMalformedPasswordHash
	}
	policy.SaltBytes = uint32(len(salt))

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return policy, nil, nil, ErrMalformedPasswordHash
	}
	policy.KeyBytes = uint32(len(key))

	return policy, salt, key, nil
}
