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
	"encoding/binary"
	"io"
)

// Voice frame wire layout (spec.md §4.1):
//
//	offset  size  field
//	0       4     total_payload_length  (big-endian uint32, excludes this header)
//	4       2     nickname_length       (big-endian uint16)
//	6       N     nickname              (UTF-8)
//	6+N     1     codec_id              (0x00 raw PCM, 0x01 Opus)
//	7+N     2     audio_length          (big-endian uint16)
//	9+N     M     audio_payload         (opaque)
//
// The server never inspects the audio payload. It validates only that
// total_payload_length <= MaxVoiceFrame and reads exactly that many bytes.

// VoiceFrame is a parsed voice frame. Sender and CodecID are informational;
// the server never uses them to make forwarding decisions, only to satisfy
// callers (and tests) that want to inspect what was sent.
type VoiceFrame struct {
	Sender  string
	CodecID byte
	Audio   []byte
}

// readExact reads exactly n bytes from r, or returns an error. A short
// read (peer closed mid-frame) surfaces as io.ErrUnexpectedEOF via
// io.ReadFull's own contract.
func readExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadVoiceFrame reads one length-prefixed frame from r. It returns the raw
// framed bytes (4-byte length header included, exactly as received) so the
// caller can forward them byte-for-byte. A total_payload_length exceeding MaxVoiceFrame is reported as
// ErrFrameTooLarge without consuming the (unbounded) body, and the caller
// must close the connection.
func ReadVoiceFrame(r io.Reader) (framed []byte, err error) {
	header, err := readExact(r, 4)
	if err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header)
	if length > MaxVoiceFrame {
		return nil, ErrFrameTooLarge
	}

	body, err := readExact(r, int(length))
	if err != nil {
		return nil, err
	}

	framed = make([]byte, 0, 4+len(body))
	framed = append(framed, header...)
	framed = append(framed, body...)
	return framed, nil
}

// ParseVoicePayload decodes the inner fields of a voice frame's payload
// (the bytes after the 4-byte length header). It is used only by tests and
// diagnostic tooling — the forwarder itself never decodes the payload, per
// spec.md §4.1 and §4.6.
func ParseVoicePayload(payload []byte) (VoiceFrame, error) {
	if len(payload) < 2 {
		return VoiceFrame{}, io.ErrUnexpectedEOF
	}
	nickLen := int(binary.BigEndian.Uint16(payload[0:2]))
	off := 2
	if len(payload) < off+nickLen+1+2 {
		return VoiceFrame{}, io.ErrUnexpectedEOF
	}
	nick := string(payload[off : off+nickLen])
	off += nickLen

	codec := payload[off]
	off++

	audioLen := int(binary.BigEndian.Uint16(payload[off : off+2]))
	off += 2
	if len(payload) < off+audioLen {
		return VoiceFrame{}, io.ErrUnexpectedEOF
	}
	audio := payload[off : off+audioLen]

	return VoiceFrame{Sender: nick, CodecID: codec, Audio: audio}, nil
}

// EncodeVoiceFrame renders a complete framed voice packet (length header
// included) from its fields. Used by tests exercising the round-trip
// property in spec.md §8, and by the voice client emulation in testbot-
// style integration tests.
func EncodeVoiceFrame(nick string, codec byte, audio []byte) []byte {
	payloadLen := 2 + len(nick) + 1 + 2 + len(audio)

	out := make([]byte, 4+payloadLen)
	binary.BigEndian.PutUint32(out[0:4], uint32(payloadLen))
	binary.BigEndian.PutUint16(out[4:6], uint16(len(nick)))
	copy(out[6:6+len(nick)], nick)
	off := 6 + len(nick)
	out[off] = codec
	off++
	binary.BigEndian.PutUint16(out[off:off+2], uint16(len(audio)))
	off += 2
	copy(out[off:], audio)

	return out
}
