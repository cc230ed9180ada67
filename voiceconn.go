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
	"net"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/anovak/hybridserver/shared/pool"
	"github.com/btnmasher/random"
)

// VoiceConn represents one client's voice data-plane connection. Unlike
// TextConn, it never parses application meaning out of what it forwards;
// its only job is identify-then-relay (spec.md §4.6).
type VoiceConn struct {
	server *Server
	sock   net.Conn

	username string // identified once from the first bytes the client sends, may be ""

	wMu sync.Mutex // serializes this conn's own goroutine against concurrent forwarders

	log *logrus.Entry
}

func newVoiceConn(server *Server, sock net.Conn) *VoiceConn {
	return &VoiceConn{
		server: server,
		sock:   sock,
		log: server.log.WithFields(logrus.Fields{
			"remote": sock.RemoteAddr().String(),
			"conn":   random.String(10),
		}),
	}
}

// write forwards an already-framed packet to this connection's socket.
func (c *VoiceConn) write(framed []byte) error {
	c.wMu.Lock()
	defer c.wMu.Unlock()
	_, err := c.sock.Write(framed)
	return err
}

// runVoice drives one voice connection end to end: set TCP_NODELAY,
// identify the client from its first bytes, register it, then relay
// frames until the peer closes or a decode constraint fails (spec.md
// §4.6). There is no handshake reply on this socket at any point; the
// client learns nothing back except the frames other members send.
func runVoice(server *Server, sock net.Conn) {
	if tcpConn, ok := sock.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	conn := newVoiceConn(server, sock)
	defer sock.Close()

	conn.username = conn.identify()
	conn.log.Debugf("voice connection identified as %q", conn.username)

	server.registry.AddVoice(conn, conn.username)
	defer server.registry.RemoveVoice(sock)

	conn.relayLoop()
}

// identify reads up to MaxVoiceNickRead bytes in a single read and treats
// them as the connecting client's nickname, matching
// original_source/server/voice_handler.py's accept_voice_clients, which
// takes whatever a single recv(1024) returns rather than framing it. A
// read error or empty read yields an unidentified ("") connection rather
// than closing it: the Python original tolerates this the same way,
// leaving the connection registered with an empty nickname, which the
// text-side SetChannel cascade (matched by username) never reaches.
func (c *VoiceConn) identify() string {
	buf := make([]byte, MaxVoiceNickRead)
	n, err := c.sock.Read(buf)
	if err != nil || n == 0 {
		return ""
	}
	return strings.TrimSpace(string(buf[:n]))
}

// voiceBuffer is a reusable read target for one frame, pooled to spare an
// allocation per packet on the hot forwarding path (this protocol pushes
// audio at a steady, high rate for the duration of every voice call).
type voiceBuffer struct {
	data []byte
}

// Reset satisfies pool.Resettable.
func (b *voiceBuffer) Reset() {
	b.data = b.data[:0]
}

var voiceBufPool = pool.New[*voiceBuffer](func() *voiceBuffer {
	return &voiceBuffer{data: make([]byte, 0, 4+MaxVoiceFrame)}
})

// readFrame reads one length-prefixed frame from r into buf, growing buf
// as needed, and returns the framed bytes (header included). The returned
// slice aliases buf.data and is only valid until buf is next reset or
// recycled.
func readFrame(r io.Reader, buf *voiceBuffer) ([]byte, error) {
	header, err := readExact(r, 4)
	if err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header)
	if length > MaxVoiceFrame {
		return nil, ErrFrameTooLarge
	}

	need := 4 + int(length)
	if cap(buf.data) < need {
		buf.data = make([]byte, 0, need)
	}
	buf.data = buf.data[:need]
	copy(buf.data, header)

	if _, err := io.ReadFull(r, buf.data[4:]); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// relayLoop reads framed voice packets and forwards each one, verbatim,
// to every other voice connection currently sharing this connection's
// channel. The server never inspects frame contents beyond the length
// header needed to delimit them.
func (c *VoiceConn) relayLoop() {
	buf := voiceBufPool.New()
	defer voiceBufPool.Recycle(buf)

	for {
		framed, err := readFrame(c.sock, buf)
		if err != nil {
			return
		}
		c.broadcast(framed)
	}
}

// broadcast fans framed out to every voice connection in c's channel
// except c itself. A write error on one target is swallowed, mirroring
// original_source/server/voice_handler.py's broadcast_voice; the failing
// connection's own relayLoop will observe the broken socket independently.
func (c *VoiceConn) broadcast(framed []byte) {
	channel := c.server.registry.VoiceChannelOf(c.sock)
	if channel == "" {
		return
	}

	for _, target := range c.server.registry.VoiceConnsInChannel(channel) {
		if target == c {
			continue
		}
		if err := target.write(framed); err != nil {
			target.log.Debugf("voice forward error: %v", err)
		}
	}
}
