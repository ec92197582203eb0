package firebase

import (
	"context"
	"path/filepath"
	"testing"
)

func TestClientsCloseReturnsNilWhenFirestoreNil(t *testing.T) {
	c := &Clients{}

	if err := c.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestInitializeClientsRequiresProjectID(t *testing.T) {
	_, err := InitializeClients(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing project ID")
	}
}

func TestInitializeClientsMissingCredentialsFile(t *testing.T) {
	_, err := InitializeClients(context.Background(), Config{
		ProjectID:                    "demo-test-project",
		GoogleApplicationCredentials: filepath.Join(t.TempDir(), "missing.json"),
	})
	if err == nil {
		t.Fatal("expected error for missing credentials file")
	}
}
