/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package hybrid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantCommand string
		wantPayload string
		wantErr     error
	}{
		{
			name:        "command with payload",
			input:       "MSG:hello",
			wantCommand: "MSG",
			wantPayload: "hello",
		},
		{
			name:        "bare command",
			input:       "PING",
			wantCommand: "PING",
			wantPayload: "",
		},
		{
			name:        "payload retains further colons",
			input:       "MSG:alice:hi:there",
			wantCommand: "MSG",
			wantPayload: "alice:hi:there",
		},
		{
			name:        "empty payload after colon",
			input:       "TYPING:",
			wantCommand: "TYPING",
			wantPayload: "",
		},
		{
			name:    "too long",
			input:   strings.Repeat("a", MaxMsgLength+1),
			wantErr: ErrLineTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, payload, err := ParseLine(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCommand, command)
			assert.Equal(t, tt.wantPayload, payload)
		})
	}
}

func TestSplitFirst(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantRest  string
		wantOK    bool
	}{
		{
			name:      "two fields",
			input:     "alice:hunter2",
			wantFirst: "alice",
			wantRest:  "hunter2",
			wantOK:    true,
		},
		{
			name:      "rest keeps trailing colons",
			input:     "alice:hi:there",
			wantFirst: "alice",
			wantRest:  "hi:there",
			wantOK:    true,
		},
		{
			name:      "no colon",
			input:     "alice",
			wantFirst: "alice",
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, rest, ok := SplitFirst(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFirst, first)
			if tt.wantOK {
				assert.Equal(t, tt.wantRest, rest)
			}
		})
	}
}
