package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/unitgrid/pkg/adapters/memory"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/persistence/middleware"
	"github.com/aretw0/unitgrid/pkg/ports"
	"github.com/aretw0/unitgrid/pkg/schema"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func wrap(t *testing.T, next ports.ProjectStore, cfg middleware.EncryptionConfig) ports.ProjectStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return mw(next)
}

func newProject(id string) *domain.Project {
	p := domain.NewProject(id, "Line 4", "acme", schema.DefaultConveyorSchema())
	p.InputData[0][0] = "secret-unit"
	return p
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunProjectStoreContract(t, wrap(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	secureStore := wrap(t, underlyingStore, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	if err := secureStore.Save(ctx, newProject("p1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The underlying store only sees the envelope.
	stored, err := underlyingStore.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if stored.Name != "" || len(stored.InputData) != 0 || len(stored.InputDataConfig) != 0 {
		t.Fatalf("Expected grid and name to be hidden, got %+v", stored)
	}
	if stored.Company != "acme" {
		t.Errorf("Expected company to stay indexable, got %q", stored.Company)
	}
	if !strings.HasPrefix(stored.Description, "enc:v1:") {
		t.Fatalf("Expected encrypted envelope, got %q", stored.Description)
	}

	loaded, err := secureStore.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded.InputData[0][0] != "secret-unit" || loaded.Name != "Line 4" {
		t.Errorf("Decrypted project mismatch: %+v", loaded)
	}

	list, err := secureStore.ListByCompany(ctx, "acme")
	if err != nil || len(list) != 1 || list[0].Name != "Line 4" {
		t.Errorf("ListByCompany = %v, %v", list, err)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureStoreOld := wrap(t, underlyingStore, middleware.EncryptionConfig{ActiveKey: oldKey})
	if err := secureStoreOld.Save(ctx, newProject("rotation")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureStoreNew := wrap(t, underlyingStore, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := secureStoreNew.Load(ctx, "rotation")
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if loaded.InputData[0][0] != "secret-unit" {
		t.Errorf("Decryption with fallback key failed")
	}

	loaded.InputData[0][0] = "rewritten"
	if err := secureStoreNew.Save(ctx, loaded); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}

	if _, err := secureStoreOld.Load(ctx, "rotation"); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_PlainDocumentRejected(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	if err := underlyingStore.Save(ctx, newProject("plain")); err != nil {
		t.Fatal(err)
	}

	secureStore := wrap(t, underlyingStore, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if _, err := secureStore.Load(ctx, "plain"); !errors.Is(err, middleware.ErrNotEncrypted) {
		t.Errorf("Expected ErrNotEncrypted, got %v", err)
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	if _, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")}); err == nil {
		t.Error("Expected error for invalid key size")
	}
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	if err != nil || string(got) != string(key) {
		t.Fatalf("ParseKey round trip failed: %v", err)
	}
	if _, err := middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Error("Expected error for short key")
	}
	if _, err := middleware.ParseKey("%%%"); err == nil {
		t.Error("Expected error for bad base64")
	}
}
