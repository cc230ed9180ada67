/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package hybrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageSet(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		payload  string
		expected string
	}{
		{
			name:     "command with payload",
			command:  EvtUserlist,
			payload:  "alice,bob",
			expected: "USERLIST:alice,bob\n",
		},
		{
			name:     "bare command",
			command:  EvtPong,
			payload:  "",
			expected: "PONG\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{}
			msg.Set(tt.command, tt.payload)
			assert.Equal(t, tt.expected, msg.String())
			assert.Equal(t, []byte(tt.expected), msg.Bytes())
		})
	}
}

func TestMessageScrub(t *testing.T) {
	msg := &Message{}
	msg.Set(EvtSystem, "hello")
	msg.Scrub()
	assert.Equal(t, "", msg.String())
}

func TestMessagePoolRecycle(t *testing.T) {
	msg := msgPool.New()
	msg.Set(EvtSystem, "leaked")
	msgPool.Recycle(msg)

	msg2 := msgPool.New()
	assert.Equal(t, "", msg2.String(), "recycled message must not leak a previous line's bytes")
}

func TestNewLine(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		fields   []string
		expected string
	}{
		{
			name:     "no fields",
			command:  EvtAuthOK,
			expected: "AUTH_OK\n",
		},
		{
			name:     "single field",
			command:  EvtRegFail,
			fields:   []string{ReasonNameTaken},
			expected: "REG_FAIL:Имя уже занято\n",
		},
		{
			name:     "multiple fields joined by colon",
			command:  EvtChannelUsers,
			fields:   []string{"General", "alice,bob"},
			expected: "CHANNEL_USERS:General:alice,bob\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(newLine(tt.command, tt.fields...)))
		})
	}
}
