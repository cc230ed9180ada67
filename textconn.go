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
	"bufio"
	"net"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/btnmasher/random"
)

// TextConn represents one client's text control-plane connection. It owns
// its socket and read buffer for the lifetime of the goroutine running
// runText; the registry keys it by its net.Conn and keeps a pointer to it
// so broadcasters can write through its write mutex.
type TextConn struct {
	server *Server
	sock   net.Conn
	reader *bufio.Reader

	remoteAddr string
	username   string // set once AUTH_OK is sent; immutable thereafter

	wMu sync.Mutex // serializes writes from this conn's own goroutine and any fan-out broadcaster

	log *logrus.Entry

	disconnectOnce sync.Once
}

func newTextConn(server *Server, sock net.Conn) *TextConn {
	return &TextConn{
		server:     server,
		sock:       sock,
		reader:     bufio.NewReader(sock),
		remoteAddr: sock.RemoteAddr().String(),
		log: server.log.WithFields(logrus.Fields{
			"remote": sock.RemoteAddr().String(),
			"conn":   random.String(10),
		}),
	}
}

// write sends one already-rendered line (including its trailing LF) to
// this connection's socket. Safe to call concurrently: the owning read
// loop and any broadcaster fanning a message out to this connection may
// call it at the same time.
func (c *TextConn) write(line []byte) error {
	c.wMu.Lock()
	defer c.wMu.Unlock()
	_, err := c.sock.Write(line)
	return err
}

// reply renders command with zero or more already-joined fields, writing
// "<command>:<a>:<b>...\n" (or bare "<command>\n" with no fields).
func (c *TextConn) reply(command string, fields ...string) {
	if err := c.write(newLine(command, fields...)); err != nil {
		c.log.Debugf("write error: %v", err)
	}
}

func (c *TextConn) replySystem(reason string) {
	c.reply(EvtSystem, reason)
}

func (c *TextConn) readLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runText drives one text connection end to end: the auth phase, then (on
// success) the session phase, then cleanup. It is the function spawned as
// a goroutine per accepted text socket (spec.md §4.7).
func runText(server *Server, sock net.Conn) {
	conn := newTextConn(server, sock)
	defer sock.Close()

	conn.log.Debug("text connection accepted")

	if !conn.authenticate() {
		return
	}

	conn.onSessionStart()
	conn.sessionLoop()
	conn.disconnect()
}

// authenticate drives Phase A (spec.md §4.5). It returns true once a
// LOGIN has succeeded, having already sent AUTH_OK and set conn.username.
// Any bytes the client sent after the LOGIN line remain buffered in
// conn.reader and are naturally picked up by sessionLoop.
func (c *TextConn) authenticate() bool {
	for {
		line, err := c.readLine()
		if err != nil {
			return false
		}
		if line == "" {
			continue
		}

		command, payload, err := ParseLine(line)
		if err != nil {
			return false
		}

		switch command {
		case CmdRegister:
			username, password, ok := SplitFirst(payload)
			if !ok {
				c.reply(EvtRegFail, ReasonBadFormat)
				continue
			}
			if ok, reason := c.server.credentials.Register(username, password); ok {
				c.reply(EvtRegOK)
			} else {
				c.reply(EvtRegFail, reason)
			}

		case CmdLogin:
			username, password, ok := SplitFirst(payload)
			if !ok {
				c.reply(EvtAuthFail, ReasonBadFormat)
				continue
			}
			if c.server.registry.UsernameOnline(username) {
				c.reply(EvtAuthFail, ReasonAlreadyOnline)
				continue
			}
			if ok, reason := c.server.credentials.Verify(username, password); ok {
				c.username = username
				c.reply(EvtAuthOK)
				return true
			} else {
				c.reply(EvtAuthFail, reason)
			}

		default:
			c.reply(EvtAuthFail, ReasonLoginFirst)
		}
	}
}

// onSessionStart performs the four registration steps of spec.md §4.5
// Phase B: register in the registry, broadcast the join, refresh the
// userlist for everyone, and send the channel list to this client alone.
func (c *TextConn) onSessionStart() {
	c.server.registry.AddText(c, c.username)
	c.log.Infof("%s authenticated", c.username)

	broadcastText(c.server, newLine(EvtSystem, c.username+" присоединился!"), c, "")
	sendUserList(c.server, nil)
	sendChannelList(c.server, c)
}

// sessionLoop drives Phase B (spec.md §4.5): read commands strictly in
// order and route each to its handler until the peer disconnects or a
// read/decode error occurs.
func (c *TextConn) sessionLoop() {
	router := c.server.router

	for {
		line, err := c.readLine()
		if err != nil {
			return
		}
		if line == "" {
			continue
		}

		command, payload, err := ParseLine(line)
		if err != nil {
			return
		}

		router.Route(c, command, payload)
	}
}

// disconnect runs the disconnect path of spec.md §4.5. It is idempotent:
// repeated calls for the same connection are safe, though in practice
// runText only ever calls it once.
func (c *TextConn) disconnect() {
	c.disconnectOnce.Do(func() {
		channel := c.server.registry.ChannelOf(c.sock)
		c.server.registry.RemoveText(c.sock)

		broadcastText(c.server, newLine(EvtSystem, c.username+" покинул чат"), nil, "")
		sendUserList(c.server, nil)
		if channel != "" {
			sendChannelUsers(c.server, channel)
		}

		c.log.Infof("%s disconnected", c.username)
	})
}
