package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	testConnStr := "postgres://testuser@localhost:5432/testdb?sslmode=disable"

	if err := SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	retrieved, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if retrieved != testConnStr {
		t.Errorf("GetConnectionString() = %q, want %q", retrieved, testConnStr)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
}

func TestGetConnectionStringNotFound(t *testing.T) {
	gokeyring.MockInit()

	_ = DeleteConnectionString()

	_, err := GetConnectionString()
	if err != ErrNotFound {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://testuser@localhost:5432/testdb"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}

	_, err := GetConnectionString()
	if err != ErrNotFound {
		t.Errorf("After DeleteConnectionString(), GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestBridgeSecretRoundTrip(t *testing.T) {
	gokeyring.MockInit()

	if err := SetBridgeSecret(""); err == nil {
		t.Error("SetBridgeSecret(\"\") should return an error")
	}

	if err := SetBridgeSecret("s3cret"); err != nil {
		t.Fatalf("SetBridgeSecret() failed: %v", err)
	}

	got, err := GetBridgeSecret()
	if err != nil {
		t.Fatalf("GetBridgeSecret() failed: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("GetBridgeSecret() = %q, want %q", got, "s3cret")
	}

	// The two entries are independent.
	_ = DeleteConnectionString()
	if _, err := GetBridgeSecret(); err != nil {
		t.Errorf("bridge secret lost after deleting connection string: %v", err)
	}

	if err := DeleteBridgeSecret(); err != nil {
		t.Fatalf("DeleteBridgeSecret() failed: %v", err)
	}
	if _, err := GetBridgeSecret(); err != ErrNotFound {
		t.Errorf("GetBridgeSecret() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
