package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

const credentialsFile = "credentials.json"

// Credentials is what a signed-in client keeps between runs.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CredentialStore keeps credentials in one of two scopes: a session directory that
// does not outlive the machine's temp dir, or a persistent one chosen with remember.
type CredentialStore struct {
	SessionDir    string
	PersistentDir string
}

// DefaultCredentialStore uses os.TempDir for the session scope and os.UserConfigDir
// for the persistent scope.
func DefaultCredentialStore(app string) (*CredentialStore, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &CredentialStore{
		SessionDir:    filepath.Join(os.TempDir(), app+"-"+currentUID()),
		PersistentDir: filepath.Join(cfgDir, app),
	}, nil
}

// Save writes creds to the scope picked by remember and removes any copy in the other
// scope so a stale token cannot shadow the new one.
func (s *CredentialStore) Save(creds Credentials, remember bool) error {
	dir, other := s.SessionDir, s.PersistentDir
	if remember {
		dir, other = s.PersistentDir, s.SessionDir
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, credentialsFile), b, 0o600); err != nil {
		return err
	}
	return removeIfExists(filepath.Join(other, credentialsFile))
}

// Load returns the session credentials if present, else the persistent ones. ok is
// false when neither scope holds credentials.
func (s *CredentialStore) Load() (creds Credentials, ok bool, err error) {
	for _, dir := range []string{s.SessionDir, s.PersistentDir} {
		b, err := os.ReadFile(filepath.Join(dir, credentialsFile))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Credentials{}, false, err
		}
		if err := json.Unmarshal(b, &creds); err != nil {
			return Credentials{}, false, err
		}
		return creds, true, nil
	}
	return Credentials{}, false, nil
}

// Clear removes credentials from both scopes.
func (s *CredentialStore) Clear() error {
	return errors.Join(
		removeIfExists(filepath.Join(s.SessionDir, credentialsFile)),
		removeIfExists(filepath.Join(s.PersistentDir, credentialsFile)),
	)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// currentUID keeps session directories of different local users apart. Getuid is -1
// on Windows.
func currentUID() string {
	if uid := os.Getuid(); uid >= 0 {
		return strconv.Itoa(uid)
	}
	return "session"
}
