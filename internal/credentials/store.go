// Package credentials is the boundary to the host's secure secret storage.
// Secrets never touch .export.toml, resolved configs, logs or any state this
// service persists.
package credentials

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/scriptor-pro/ernest-export/internal/model"
)

// Store retrieves and writes secrets for a (project, target, profile, kind)
// slot. A missing secret is found=false, not an error; runners map it to the
// target-specific retryable error code.
type Store interface {
	Get(projectRoot string, target model.ExportTarget, profile *string, kind model.CredentialKind) (value string, found bool, err error)
	Set(projectRoot string, target model.ExportTarget, profile *string, kind model.CredentialKind, value string) error
	Delete(projectRoot string, target model.ExportTarget, profile *string, kind model.CredentialKind) error
}

// Keychain stores secrets in the OS keychain (macOS Keychain, Secret Service,
// Windows Credential Manager) under a single service name.
type Keychain struct {
	service string
}

func NewKeychain(service string) *Keychain {
	return &Keychain{service: service}
}

func (k *Keychain) Get(projectRoot string, target model.ExportTarget, profile *string, kind model.CredentialKind) (string, bool, error) {
	value, err := keyring.Get(k.service, credentialKey(projectRoot, target, profile, kind))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (k *Keychain) Set(projectRoot string, target model.ExportTarget, profile *string, kind model.CredentialKind, value string) error {
	return keyring.Set(k.service, credentialKey(projectRoot, target, profile, kind), value)
}

func (k *Keychain) Delete(projectRoot string, target model.ExportTarget, profile *string, kind model.CredentialKind) error {
	err := keyring.Delete(k.service, credentialKey(projectRoot, target, profile, kind))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// credentialKey scopes a secret to one project root. The root is hashed so
// the keychain account name stays printable and fixed-length regardless of
// where the project lives on disk.
func credentialKey(projectRoot string, target model.ExportTarget, profile *string, kind model.CredentialKind) string {
	sum := sha256.Sum256([]byte(projectRoot))
	profilePart := "default"
	if profile != nil {
		profilePart = *profile
	}
	return fmt.Sprintf("%s:%s:%s:%s", target, kind, profilePart, hex.EncodeToString(sum[:]))
}
