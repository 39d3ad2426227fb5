package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quizhub/internal/model"
)

func TestMemStore_ProfileExclusivity(t *testing.T) {
	t.Parallel()

	st := NewMemStore()
	if err := st.SetUser(&model.User{ID: 1, Username: "alice"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if err := st.SetGuest(&model.User{Username: "guest-1", IsGuest: true}); err != nil {
		t.Fatalf("SetGuest: %v", err)
	}
	c, _ := st.Load()
	if c.User != nil || c.Guest == nil {
		t.Fatalf("guest must displace user: %+v", c)
	}
	if p := c.Profile(); p == nil || !p.IsGuest {
		t.Fatalf("Profile() = %+v, want the guest", p)
	}

	if err := st.SetUser(&model.User{ID: 2, Username: "bob"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	c, _ = st.Load()
	if c.Guest != nil || c.User == nil {
		t.Fatalf("user must displace guest: %+v", c)
	}
}

func TestMemStore_TokenRotationKeepsRefresh(t *testing.T) {
	t.Parallel()

	st := NewMemStore()
	if err := st.SetTokens("a1", "r1"); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}
	// Refresh rotation only carries a new access token.
	if err := st.SetTokens("a2", ""); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}
	c, _ := st.Load()
	if c.Access != "a2" || c.Refresh != "r1" {
		t.Fatalf("creds = %+v, want access a2 and refresh r1", c)
	}
}

func TestMemStore_UpdatePoints(t *testing.T) {
	t.Parallel()

	st := NewMemStore()

	// No profile: no-op.
	if err := st.UpdatePoints(10); err != nil {
		t.Fatalf("UpdatePoints: %v", err)
	}

	_ = st.SetGuest(&model.User{Username: "g", IsGuest: true})
	_ = st.UpdatePoints(10)
	c, _ := st.Load()
	if c.Guest.Points != 0 {
		t.Fatalf("guest accumulated points: %+v", c.Guest)
	}

	_ = st.SetUser(&model.User{ID: 1, Username: "alice", Points: 5})
	_ = st.UpdatePoints(10)
	c, _ = st.Load()
	if c.User.Points != 15 {
		t.Fatalf("points = %d, want 15", c.User.Points)
	}
}

func TestFileStore_Roundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	st := NewFileStore(dir)

	// Fresh store yields empty credentials.
	c, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c != (Credentials{}) {
		t.Fatalf("fresh store not empty: %+v", c)
	}

	if err := st.SetTokens("acc", "ref"); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}
	if err := st.SetUser(&model.User{ID: 3, Username: "carol", Points: 7}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}

	// Fresh handle over the same dir sees the committed state.
	c, err = NewFileStore(dir).Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if c.Access != "acc" || c.Refresh != "ref" || c.User == nil || c.User.Username != "carol" {
		t.Fatalf("reloaded creds = %+v", c)
	}
}

func TestFileStore_SealedAtRest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	st := NewFileStore(dir)
	if err := st.SetTokens("super-secret-access", "super-secret-refresh"); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}

	blob, err := os.ReadFile(filepath.Join(dir, "session.bin"))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if bytes.Contains(blob, []byte("super-secret-access")) {
		t.Fatalf("token stored in plaintext")
	}

	// Flipping a ciphertext byte must fail the open, not yield garbage creds.
	blob[len(blob)-1] ^= 0xff
	if err := os.WriteFile(filepath.Join(dir, "session.bin"), blob, 0o600); err != nil {
		t.Fatalf("write tampered blob: %v", err)
	}
	if _, err := NewFileStore(dir).Load(); err == nil {
		t.Fatalf("tampered blob loaded without error")
	}
}

func TestFileStore_Clear(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	st := NewFileStore(dir)
	_ = st.SetTokens("a", "r")

	if err := st.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	// Clear twice is fine.
	if err := st.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	c, err := st.Load()
	if err != nil {
		t.Fatalf("Load after Clear: %v", err)
	}
	if c != (Credentials{}) {
		t.Fatalf("cleared store not empty: %+v", c)
	}
}

func TestDefaultDir_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultDir(); got != filepath.Join("/tmp/xdg", "quizhub") {
		t.Fatalf("DefaultDir = %q", got)
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, ok := AccessTokenExpiry(tok)
	if !ok {
		t.Fatalf("expiry not found")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}

	if _, ok := AccessTokenExpiry("not-a-jwt"); ok {
		t.Fatalf("garbage token reported an expiry")
	}
}
