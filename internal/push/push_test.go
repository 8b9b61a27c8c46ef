package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	// Public key should be base64url-encoded, 65 bytes uncompressed P-256 point
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}

	// Private key should be base64url-encoded, 32 bytes P-256 scalar
	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

// browserSubscription returns a subscription with keys a real browser could
// have produced, pointing at endpoint.
func browserSubscription(t *testing.T, endpoint string) Subscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate client key: %v", err)
	}
	secret := make([]byte, 16)
	if _, err := rand.Read(secret); err != nil {
		t.Fatalf("generate auth secret: %v", err)
	}
	return Subscription{
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(secret),
		Member:   "Enfant 1",
	}
}

func setupService(t *testing.T) *Service {
	t.Helper()
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}
	return NewService(pub, priv, "")
}

func TestServiceSend(t *testing.T) {
	var gotAuth, gotEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotEncoding = r.Header.Get("Content-Encoding")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := setupService(t)
	sub := browserSubscription(t, srv.URL+"/push/abc")
	if err := svc.Send(context.Background(), sub, Payload{Title: "Mission validée"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.HasPrefix(gotAuth, "vapid ") {
		t.Errorf("Authorization = %q, want vapid scheme", gotAuth)
	}
	if gotEncoding != "aes128gcm" {
		t.Errorf("Content-Encoding = %q, want aes128gcm", gotEncoding)
	}
}

func TestServiceSendStatuses(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusGone, ErrExpired},
		{http.StatusNotFound, ErrExpired},
		{http.StatusBadRequest, nil},
	}
	svc := setupService(t)
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		err := svc.Send(context.Background(), browserSubscription(t, srv.URL), Payload{Title: "x"})
		srv.Close()

		if err == nil {
			t.Errorf("status %d: expected error", tt.status)
			continue
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.wantErr)
		}
		if tt.wantErr == nil && errors.Is(err, ErrExpired) {
			t.Errorf("status %d: unexpected ErrExpired", tt.status)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Add(Subscription{Endpoint: "https://push.example/b", Member: "Enfant 1"})
	r.Add(Subscription{Endpoint: "https://push.example/a", Member: "Enfant 1"})
	r.Add(Subscription{Endpoint: "https://push.example/c", Member: "Parent 1"})
	r.Add(Subscription{Endpoint: "https://push.example/c", Member: "Parent 1"})

	if r.Len() != 3 {
		t.Fatalf("len = %d, want 3", r.Len())
	}
	subs := r.ForMembers("Enfant 1")
	if len(subs) != 2 || subs[0].Endpoint != "https://push.example/a" {
		t.Errorf("ForMembers = %+v", subs)
	}

	r.RenameMember("Enfant 1", "Léa")
	if len(r.ForMembers("Enfant 1")) != 0 || len(r.ForMembers("Léa")) != 2 {
		t.Error("rename did not move subscriptions")
	}

	r.RemoveMember("Léa")
	if r.Len() != 1 {
		t.Errorf("len after RemoveMember = %d, want 1", r.Len())
	}
	if !r.Remove("https://push.example/c") {
		t.Error("Remove returned false for a known endpoint")
	}
	if r.Remove("https://push.example/c") {
		t.Error("Remove returned true twice")
	}
}
