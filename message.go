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
	"bytes"
	"strings"

	"github.com/anovak/hybridserver/shared/itempool"
)

// Message is a pooled, renderable text-protocol line. newLine pulls one
// from msgPool, renders a command/payload pair into it, copies the result
// out, then recycles it.
type Message struct {
	buf bytes.Buffer
}

// Scrub satisfies itempool.ScrubbableItem, resetting the buffer so a
// recycled Message never leaks a previous line's bytes to its next user.
func (m *Message) Scrub() {
	m.buf.Reset()
}

// Set renders "<command>:<payload>\n" into the message buffer. If payload
// is empty, it renders just "<command>\n" (e.g. PONG, AUTH_OK).
func (m *Message) Set(command, payload string) *Message {
	m.buf.Reset()
	m.buf.WriteString(command)
	if payload != "" {
		m.buf.WriteByte(':')
		m.buf.WriteString(payload)
	}
	m.buf.WriteByte('\n')
	return m
}

// Bytes returns the rendered line, including its trailing LF.
func (m *Message) Bytes() []byte {
	return m.buf.Bytes()
}

func (m *Message) String() string {
	return m.buf.String()
}

const msgPoolMax = MessagePoolMax

var msgPool = itempool.New[*Message](msgPoolMax, func() *Message { return &Message{} })

// newLine renders a command/fields tuple to a byte slice, using a pooled
// Message to do the rendering. The Message is recycled before returning,
// so the returned slice is always a fresh copy the caller owns outright —
// safe to hand to broadcast targets that outlive this call.
func newLine(command string, fields ...string) []byte {
	var payload string
	if len(fields) > 0 {
		payload = strings.Join(fields, ":")
	}

	msg := msgPool.New()
	msg.Set(command, payload)
	line := append([]byte(nil), msg.Bytes()...)
	msgPool.Recycle(msg)

	return line
}
