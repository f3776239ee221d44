package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB   uint32 = 8 * 1024
	minSaltLength uint32 = 16
	minKeyLength  uint32 = 16
	algorithmID          = "argon2id"
)

// Params tunes the Argon2id cost. Use [DefaultParams] unless you have
// measured reasons not to.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns the recommended cost parameters.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes and verifies passwords with Argon2id. Its Verify method
// satisfies the engine's PasswordVerifier interface.
type Hasher struct {
	params Params
}

// NewHasher validates params and returns a [Hasher].
func NewHasher(params Params) (*Hasher, error) {
	if params.Memory < minMemoryKB {
		return nil, errors.New("password: memory must be >= 8192 KB")
	}
	if params.Time < 1 {
		return nil, errors.New("password: time must be >= 1")
	}
	if params.Parallelism < 1 {
		return nil, errors.New("password: parallelism must be >= 1")
	}
	if params.SaltLength < minSaltLength {
		return nil, errors.New("password: salt length must be >= 16")
	}
	if params.KeyLength < minKeyLength {
		return nil, errors.New("password: key length must be >= 16")
	}
	return &Hasher{params: params}, nil
}

// Hash derives a PHC-encoded Argon2id hash with a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the PHC-encoded hash. Malformed
// hashes verify as false; there is no error channel because the engine
// treats any non-match as invalid credentials.
func (h *Hasher) Verify(password, encodedHash string) bool {
	memory, time, parallelism, salt, want, ok := parsePHC(encodedHash)
	if !ok {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

func parsePHC(encoded string) (memory, time uint32, parallelism uint8, salt, hash []byte, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return 0, 0, 0, nil, nil, false
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") || version != argon2.Version {
		return 0, 0, 0, nil, nil, false
	}

	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return 0, 0, 0, nil, nil, false
		}
		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v < uint64(minMemoryKB) {
				return 0, 0, 0, nil, nil, false
			}
			memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v < 1 {
				return 0, 0, 0, nil, nil, false
			}
			time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil || v < 1 {
				return 0, 0, 0, nil, nil, false
			}
			parallelism = uint8(v)
		default:
			return 0, 0, 0, nil, nil, false
		}
	}
	if memory == 0 || time == 0 || parallelism == 0 {
		return 0, 0, 0, nil, nil, false
	}

	salt, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < int(minSaltLength) {
		return 0, 0, 0, nil, nil, false
	}
	hash, err = base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return 0, 0, 0, nil, nil, false
	}

	return memory, time, parallelism, salt, hash, true
}
