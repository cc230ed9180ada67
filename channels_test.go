/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package hybrid

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChannelRegistry(t *testing.T) *ChannelRegistry {
	t.Helper()
	reg, err := NewChannelRegistry(filepath.Join(t.TempDir(), "channels.json"))
	require.NoError(t, err)
	return reg
}

func TestNewChannelRegistrySeedsGeneral(t *testing.T) {
	reg := newTestChannelRegistry(t)
	assert.Equal(t, []string{DefaultChannelName}, reg.List())
	assert.True(t, reg.Exists(DefaultChannelName))
}

func TestChannelRegistryCreate(t *testing.T) {
	tests := []struct {
		name       string
		channel    string
		wantOK     bool
		wantReason string
	}{
		{name: "valid name", channel: "random", wantOK: true},
		{name: "empty name", channel: "   ", wantReason: ReasonChannelEmpty},
		{name: "too long", channel: strings.Repeat("x", MaxChanLength+1), wantReason: ReasonChannelTooLong},
		{name: "already exists", channel: DefaultChannelName, wantReason: ReasonChannelExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestChannelRegistry(t)
			ok, reason := reg.Create(tt.channel)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}

func TestChannelRegistryDelete(t *testing.T) {
	reg := newTestChannelRegistry(t)
	ok, _ := reg.Create("random")
	require.True(t, ok)

	t.Run("permanent channel cannot be deleted", func(t *testing.T) {
		ok, reason := reg.Delete(DefaultChannelName)
		assert.False(t, ok)
		assert.Equal(t, ReasonChannelPermanent, reason)
	})

	t.Run("unknown channel", func(t *testing.T) {
		ok, reason := reg.Delete("ghost")
		assert.False(t, ok)
		assert.Equal(t, ReasonChannelNotFound, reason)
	})

	t.Run("non-permanent channel deletes", func(t *testing.T) {
		ok, _ := reg.Delete("random")
		assert.True(t, ok)
		assert.False(t, reg.Exists("random"))
	})
}
