package jwt

import (
	"testing"
	"time"
)

// FuzzParseAccess exercises the access-token parser with arbitrary strings.
// Goal: no panics; invalid inputs must be rejected with errors.
func FuzzParseAccess(f *testing.F) {
	key, err := NewProcessKey()
	if err != nil {
		f.Fatal(err)
	}
	mgr, err := NewManager(Config{
		AccessTTL: 5 * time.Minute,
		Key:       key,
		Leeway:    30 * time.Second,
	})
	if err != nil {
		f.Fatal(err)
	}

	validToken, err := mgr.CreateAccess("uid1", "user")
	if err != nil {
		f.Fatal(err)
	}

	f.Add(validToken)
	f.Add("")
	f.Add("not.a.jwt")
	f.Add("eyJhbGciOiJIUzUxMiJ9.eyJzdWIiOiJ0ZXN0In0.invalid")
	f.Add("eyJhbGciOiJub25lIn0.eyJzdWIiOiJ0ZXN0In0.")

	f.Fuzz(func(t *testing.T, input string) {
		claims, err := mgr.ParseAccess(input)
		if err != nil {
			return
		}
		if claims == nil {
			t.Fatal("ParseAccess returned nil claims without error")
		}
		if claims.Subject == "" {
			t.Fatal("ParseAccess accepted a token without subject")
		}
	})
}
