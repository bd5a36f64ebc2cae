package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// CredentialStore holds API keys by provider id. Keys are kept in plain
// text in credentials.toml with 0600 permissions.
type CredentialStore struct {
	mu          sync.RWMutex
	credentials map[string]string // providerID → API key
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{credentials: make(map[string]string)}
}

type credentialsFile struct {
	Credentials map[string]string `toml:"credentials"`
}

func credentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.toml")
}

// Load reads credentials from dataDir. A missing file is not an error.
func (c *CredentialStore) Load(dataDir string) error {
	path := credentialsPath(dataDir)
	if !FileExists(path) {
		return nil
	}

	var cf credentialsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return fmt.Errorf("failed to parse credentials file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.credentials = make(map[string]string, len(cf.Credentials))
	for k, v := range cf.Credentials {
		c.credentials[k] = v
	}
	return nil
}

// Save writes credentials to dataDir with 0600 permissions.
func (c *CredentialStore) Save(dataDir string) error {
	c.mu.RLock()
	cf := credentialsFile{Credentials: make(map[string]string, len(c.credentials))}
	for k, v := range c.credentials {
		cf.Credentials[k] = v
	}
	c.mu.RUnlock()

	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	f, err := os.OpenFile(credentialsPath(dataDir), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cf); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	return nil
}

func (c *CredentialStore) Get(providerID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credentials[providerID]
}

func (c *CredentialStore) Set(providerID, apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credentials[providerID] = apiKey
}

func (c *CredentialStore) Delete(providerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.credentials, providerID)
}
