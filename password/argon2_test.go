package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	h, err := NewHasher(DefaultParams())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	encoded, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}

	if !h.Verify("correct horse battery staple", encoded) {
		t.Fatal("expected matching password to verify")
	}
	if h.Verify("wrong password", encoded) {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestHashProducesUniqueSalts(t *testing.T) {
	h, err := NewHasher(DefaultParams())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	a, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct hashes for the same password")
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	h, err := NewHasher(DefaultParams())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	valid, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	cases := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"plain text", "not a hash"},
		{"wrong algorithm", strings.Replace(valid, "argon2id", "argon2i", 1)},
		{"wrong version", strings.Replace(valid, "v=19", "v=18", 1)},
		{"missing sections", "$argon2id$v=19$m=65536,t=3,p=2"},
		{"bad params", strings.Replace(valid, "m=65536", "m=banana", 1)},
		{"unknown param", strings.Replace(valid, "p=2", "p=2,x=1", 1)},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=3,p=2$!!!!$aGFzaA=="},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if h.Verify("secret", tc.encoded) {
				t.Fatalf("expected %q to fail verification", tc.encoded)
			}
		})
	}
}

func TestNewHasherValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"low memory", func(p *Params) { p.Memory = 1024 }},
		{"zero time", func(p *Params) { p.Time = 0 }},
		{"zero parallelism", func(p *Params) { p.Parallelism = 0 }},
		{"short salt", func(p *Params) { p.SaltLength = 8 }},
		{"short key", func(p *Params) { p.KeyLength = 8 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := DefaultParams()
			tc.mutate(&params)
			if _, err := NewHasher(params); err == nil {
				t.Fatal("expected params to be rejected")
			}
		})
	}
}
