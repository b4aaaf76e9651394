package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// ManagedUser is a device granted access to the optimizer, keyed by the
// caller-supplied device id. At most one record exists per device.
type ManagedUser struct {
	DeviceID  string `json:"deviceId"`
	AccessKey string `json:"accessKey"`
}

type adminCredential struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type adminFile struct {
	Admins []adminCredential `toml:"admins"`
}

// Default admin allowlist. A deterrent, not a security boundary: the dashboard
// runs on trusted machines and the real gate is physical access.
var defaultAdmins = []adminCredential{
	{Username: "Mentors@9274", Password: "061800"},
	{Username: "Mentors@9308", Password: "008854"},
	{Username: "Mentors@9278", Password: "172183"},
}

var deviceIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// CredentialStore gates the admin dashboard and manages per-device access
// keys. Session state lives in two tiers: the short tier is in-memory and
// dies with the process, the long tier is the durable KV ("remember me").
type CredentialStore struct {
	short  KV
	long   KV
	admins []adminCredential
}

// NewCredentialStore builds a credential store over the durable KV. If
// adminsPath names a TOML file, its [[admins]] entries replace the built-in
// allowlist.
func NewCredentialStore(long KV, adminsPath string) (*CredentialStore, error) {
	cs := &CredentialStore{
		short:  NewMemKV(),
		long:   long,
		admins: defaultAdmins,
	}

	if adminsPath != "" {
		data, err := os.ReadFile(adminsPath)
		if err != nil {
			return nil, fmt.Errorf("read admin credentials: %w", err)
		}
		var f adminFile
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse admin credentials: %w", err)
		}
		if len(f.Admins) > 0 {
			cs.admins = f.Admins
		}
	}

	return cs, nil
}

// ValidateCredentials reports whether the pair exactly matches an allowlisted
// admin. No hashing, no lockout.
func (cs *CredentialStore) ValidateCredentials(username, password string) bool {
	if username == "" || password == "" {
		return false
	}
	for _, a := range cs.admins {
		if a.Username == username && a.Password == password {
			return true
		}
	}
	return false
}

// CheckSession reports whether a session flag is present in either tier.
func (cs *CredentialStore) CheckSession() bool {
	if v, ok, _ := cs.short.Get(KeyAdminSession); ok && v == "true" {
		return true
	}
	if v, ok, _ := cs.long.Get(KeyAdminSession); ok && v == "true" {
		return true
	}
	return false
}

// Login sets the session flag. With remember, the flag survives restarts.
func (cs *CredentialStore) Login(remember bool) error {
	if remember {
		return cs.long.Set(KeyAdminSession, "true")
	}
	return cs.short.Set(KeyAdminSession, "true")
}

// Logout clears the session flag from both tiers.
func (cs *CredentialStore) Logout() error {
	if err := cs.short.Delete(KeyAdminSession); err != nil {
		return err
	}
	return cs.long.Delete(KeyAdminSession)
}

// ValidDeviceID reports whether id has the UUID shape issued keys use.
func ValidDeviceID(id string) bool {
	return deviceIDPattern.MatchString(strings.TrimSpace(id))
}

// ManagedUsers returns the current registry. Corrupt stored data is discarded
// and treated as empty.
func (cs *CredentialStore) ManagedUsers() []ManagedUser {
	raw, ok, err := cs.long.Get(KeyManagedUsers)
	if err != nil || !ok {
		return nil
	}
	var users []ManagedUser
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		log.Printf("copysmith: discarding corrupt managed-user registry: %v", err)
		cs.long.Delete(KeyManagedUsers)
		return nil
	}
	return users
}

func (cs *CredentialStore) saveManagedUsers(users []ManagedUser) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode managed users: %w", err)
	}
	if err := cs.long.Set(KeyManagedUsers, string(data)); err != nil {
		return fmt.Errorf("save managed users: %w", err)
	}
	return nil
}

// IssueKeyForDevice generates a fresh access key for the device, replacing
// any existing record. Returns the new key.
func (cs *CredentialStore) IssueKeyForDevice(deviceID string) (string, error) {
	if !ValidDeviceID(deviceID) {
		return "", fmt.Errorf("invalid device id %q: expected UUID format", deviceID)
	}
	key := "key_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := cs.setKey(deviceID, key); err != nil {
		return "", err
	}
	return key, nil
}

// IssueCustomKeyForDevice stores a caller-supplied key verbatim, replacing
// any existing record. No strength or uniqueness check; an explicit
// lower-security escape hatch for testing.
func (cs *CredentialStore) IssueCustomKeyForDevice(deviceID, accessKey string) error {
	if !ValidDeviceID(deviceID) {
		return fmt.Errorf("invalid device id %q: expected UUID format", deviceID)
	}
	if accessKey == "" {
		return fmt.Errorf("access key must not be empty")
	}
	return cs.setKey(deviceID, accessKey)
}

func (cs *CredentialStore) setKey(deviceID, accessKey string) error {
	users := cs.ManagedUsers()
	kept := users[:0]
	for _, u := range users {
		if u.DeviceID != deviceID {
			kept = append(kept, u)
		}
	}
	kept = append(kept, ManagedUser{DeviceID: deviceID, AccessKey: accessKey})
	return cs.saveManagedUsers(kept)
}

// RevokeAccessForDevice removes the record for the device. Unknown ids are a
// no-op.
func (cs *CredentialStore) RevokeAccessForDevice(deviceID string) error {
	users := cs.ManagedUsers()
	kept := users[:0]
	for _, u := range users {
		if u.DeviceID != deviceID {
			kept = append(kept, u)
		}
	}
	return cs.saveManagedUsers(kept)
}

// CycleMasterSecret invalidates every issued key by clearing the registry.
// Irreversible.
func (cs *CredentialStore) CycleMasterSecret() error {
	if err := cs.saveManagedUsers([]ManagedUser{}); err != nil {
		return err
	}
	log.Printf("copysmith: master secret cycled; all issued keys are now invalid")
	return nil
}
