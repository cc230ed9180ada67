/*
   Copyright (c) 2020, btnmasher
   All rights reserved.

   Redistribution and use in source and binary forms, with or without modification, are permitted provided that
   the following conditions are met:

   1. Redistributions of source code must retain the above copyright notice, this list of conditions and the
      following disclaimer.

   2. Redistributions in binary form must reproduce the above copyright notice, this list of conditions and
      the following disclaimer in the documentation and/or other materials provided with the distribution.

   3. Neither the name of the copyright holder nor the names of its contributors may be used to endorse or
      promote products derived from this software without specific prior written permission.

   THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED
   WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A
   PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE FOR
   ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED
   TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
   HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
   NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
   POSSIBILITY OF SUCH DAMAGE.
*/

package hybrid

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// storedUser is the on-disk representation of one registered account.
type storedUser struct {
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// credentialFile is the top-level shape of the credential store file,
// mirroring original_source/server/auth.py's {"users": {...}} document.
type credentialFile struct {
	Users map[string]storedUser `json:"users"`
}

// CredentialStore is a persistent username -> salted-hash map. All
// operations are serialized by a single lock; every mutation rewrites the
// backing file atomically. It never holds its lock across anything but
// the in-memory map mutation and the rewrite. Because a mutation performs
// disk I/O under that lock, other components must not call into the store
// while holding the registry lock.
type CredentialStore struct {
	mu       sync.Mutex
	path     string
	users    map[string]storedUser
}

// NewCredentialStore loads path, tolerating a missing or corrupt file by
// starting empty (and persisting that empty state immediately, so the
// file exists after first boot).
func NewCredentialStore(path string) (*CredentialStore, error) {
	store := &CredentialStore{
		path:  path,
		users: make(map[string]storedUser),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return store, store.save()
	}

	var file credentialFile
	if err := json.Unmarshal(data, &file); err != nil {
		return store, store.save()
	}

	if file.Users != nil {
		store.users = file.Users
	}
	return store, nil
}

// save rewrites the backing file via a temp-file-then-rename, so a crash
// mid-write never leaves a half-written store on disk. Caller must hold mu.
func (c *CredentialStore) save() error {
	file := credentialFile{Users: c.users}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, c.path)
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return fmt.Sprintf("%s$%s", salt, hex.EncodeToString(sum[:]))
}

func newSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Register adds a new user. It rejects usernames outside
// [MinUsernameLength, MaxUsernameLength] and passwords shorter than
// MinPasswordLength. On success, the full user map is rewritten to disk
// before Register returns.
func (c *CredentialStore) Register(username, password string) (ok bool, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.users[username]; exists {
		return false, ReasonNameTaken
	}
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return false, ReasonNameBadLength
	}
	if len(password) < MinPasswordLength {
		return false, ReasonPasswordTooShort
	}

	salt, err := newSalt()
	if err != nil {
		return false, ReasonBadFormat
	}

	c.users[username] = storedUser{
		PasswordHash: hashPassword(password, salt),
		CreatedAt:    time.Now(),
	}

	if err := c.save(); err != nil {
		delete(c.users, username)
		return false, ReasonBadFormat
	}

	return true, ""
}

// Verify checks a username/password pair against the store.
func (c *CredentialStore) Verify(username, password string) (ok bool, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, exists := c.users[username]
	if !exists {
		return false, ReasonUserNotFound
	}

	salt, _, found := splitHash(user.PasswordHash)
	if !found {
		return false, ReasonBadPassword
	}

	if hashPassword(password, salt) == user.PasswordHash {
		return true, ""
	}
	return false, ReasonBadPassword
}

func splitHash(stored string) (salt, hash string, ok bool) {
	for i := 0; i < len(stored); i++ {
		if stored[i] == '$' {
			return stored[:i], stored[i+1:], true
		}
	}
	return "", "", false
}

// Count returns the number of registered users, used only for the
// server's startup banner log line.
func (c *CredentialStore) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.users)
}
