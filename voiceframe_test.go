/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package hybrid

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeParseVoicePayloadRoundTrip(t *testing.T) {
	audio := []byte{1, 2, 3, 4, 5}
	framed := EncodeVoiceFrame("alice", CodecOpus, audio)

	length := binary.BigEndian.Uint32(framed[0:4])
	assert.Equal(t, int(length), len(framed)-4)

	parsed, err := ParseVoicePayload(framed[4:])
	require.NoError(t, err)
	assert.Equal(t, "alice", parsed.Sender)
	assert.Equal(t, byte(CodecOpus), parsed.CodecID)
	assert.Equal(t, audio, parsed.Audio)
}

func TestReadVoiceFrame(t *testing.T) {
	framed := EncodeVoiceFrame("bob", CodecRawPCM, []byte("hello"))

	got, err := ReadVoiceFrame(bytes.NewReader(framed))
	require.NoError(t, err)
	assert.Equal(t, framed, got)
}

func TestReadVoiceFrameTooLarge(t *testing.T) {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, MaxVoiceFrame+1)

	_, err := ReadVoiceFrame(bytes.NewReader(header))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadVoiceFrameShortRead(t *testing.T) {
	framed := EncodeVoiceFrame("carol", CodecOpus, []byte("partial"))
	truncated := framed[:len(framed)-3]

	_, err := ReadVoiceFrame(bytes.NewReader(truncated))
	assert.Error(t, err)
}

func TestReadFrameReusesBuffer(t *testing.T) {
	first := EncodeVoiceFrame("alice", CodecOpus, []byte("abc"))
	second := EncodeVoiceFrame("alice", CodecOpus, []byte("xy"))

	buf := &voiceBuffer{}

	got1, err := readFrame(bytes.NewReader(first), buf)
	require.NoError(t, err)
	assert.Equal(t, first, got1)

	got2, err := readFrame(bytes.NewReader(second), buf)
	require.NoError(t, err)
	assert.Equal(t, second, got2)
}
