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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// storedChannel is the on-disk representation of one channel.
type storedChannel struct {
	Name      string `json:"name"`
	Permanent bool   `json:"permanent"`
}

// channelFile is the top-level shape of the channel store file, mirroring
// original_source/server/channels.py's {"channels": [...]} document.
type channelFile struct {
	Channels []storedChannel `json:"channels"`
}

// ChannelRegistry is a persistent, insertion-ordered list of channels with
// a permanent flag. Serialized by a single lock, same discipline as
// CredentialStore.
type ChannelRegistry struct {
	mu       sync.Mutex
	path     string
	channels []storedChannel
}

// NewChannelRegistry loads path. If the file is missing, corrupt, or
// empty, it seeds and persists a single permanent General channel, per
// spec.md §4.3 and original_source/server/channels.py.
func NewChannelRegistry(path string) (*ChannelRegistry, error) {
	reg := &ChannelRegistry{path: path}

	data, err := os.ReadFile(path)
	if err == nil {
		var file channelFile
		if jsonErr := json.Unmarshal(data, &file); jsonErr == nil && len(file.Channels) > 0 {
			reg.channels = file.Channels
			return reg, nil
		}
	}

	reg.channels = []storedChannel{{Name: DefaultChannelName, Permanent: true}}
	return reg, reg.save()
}

func (r *ChannelRegistry) save() error {
	file := channelFile{Channels: r.channels}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".channels-*.tmp")
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

	return os.Rename(tmpName, r.path)
}

func (r *ChannelRegistry) indexOf(name string) int {
	for i := range r.channels {
		if r.channels[i].Name == name {
			return i
		}
	}
	return -1
}

// List returns channel names in insertion order.
func (r *ChannelRegistry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.channels))
	for i, ch := range r.channels {
		names[i] = ch.Name
	}
	return names
}

// Exists reports whether a channel with the given name exists.
func (r *ChannelRegistry) Exists(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOf(name) >= 0
}

// Create adds a new, non-permanent channel.
func (r *ChannelRegistry) Create(name string) (ok bool, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return false, ReasonChannelEmpty
	}
	if len(name) > MaxChanLength {
		return false, ReasonChannelTooLong
	}
	if r.indexOf(name) >= 0 {
		return false, ReasonChannelExists
	}

	r.channels = append(r.channels, storedChannel{Name: name})
	if err := r.save(); err != nil {
		r.channels = r.channels[:len(r.channels)-1]
		return false, ReasonBadFormat
	}
	return true, ""
}

// Delete removes a non-permanent channel.
func (r *ChannelRegistry) Delete(name string) (ok bool, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(name)
	if idx < 0 {
		return false, ReasonChannelNotFound
	}
	if r.channels[idx].Permanent {
		return false, ReasonChannelPermanent
	}

	removed := r.channels[idx]
	r.channels = append(r.channels[:idx], r.channels[idx+1:]...)
	if err := r.save(); err != nil {
		r.channels = append(r.channels, storedChannel{})
		copy(r.channels[idx+1:], r.channels[idx:])
		r.channels[idx] = removed
		return false, ReasonBadFormat
	}
	return true, ""
}
