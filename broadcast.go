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

import "strings"

// broadcastText fans a pre-rendered line out to every text connection
// (or every text connection in channel, if channel is non-empty), except
// exclude if it is non-nil. A write error on one target never stops
// delivery to the others, matching original_source/server/text_handler.py's
// broadcast_text, which swallows per-socket send failures the same way;
// the failing connection's own read loop will observe the broken socket
// and drive its own cleanup.
func broadcastText(server *Server, line []byte, exclude *TextConn, channel string) {
	var targets []*TextConn
	if channel != "" {
		targets = server.registry.TextConnsInChannel(channel)
	} else {
		targets = server.registry.AllTextConns()
	}

	for _, conn := range targets {
		if conn == exclude {
			continue
		}
		if err := conn.write(line); err != nil {
			conn.log.Debugf("broadcast write error: %v", err)
		}
	}
}

// sendUserList renders USERLIST:<comma-separated usernames> and sends it
// either to a single connection (if to is non-nil) or to every connected
// client.
func sendUserList(server *Server, to *TextConn) {
	line := newLine(EvtUserlist, strings.Join(server.registry.AllUsernames(), ","))

	if to != nil {
		to.write(line)
		return
	}
	for _, conn := range server.registry.AllTextConns() {
		conn.write(line)
	}
}

// sendChannelList renders CHANNEL_LIST:<comma-separated channel names>
// and sends it either to a single connection (if to is non-nil) or to
// every connected client.
func sendChannelList(server *Server, to *TextConn) {
	line := newLine(EvtChannelList, strings.Join(server.channels.List(), ","))

	if to != nil {
		to.write(line)
		return
	}
	for _, conn := range server.registry.AllTextConns() {
		conn.write(line)
	}
}

// sendChannelUsers renders CHANNEL_USERS:<channel>:<comma-separated
// usernames> for channel and broadcasts it to every connected client, so
// everyone's view of that channel's membership stays current (spec.md
// §4.5's JOIN_CHANNEL/LEAVE_CHANNEL rows).
func sendChannelUsers(server *Server, channel string) {
	line := newLine(EvtChannelUsers, channel, strings.Join(server.registry.UsersInChannel(channel), ","))
	for _, conn := range server.registry.AllTextConns() {
		conn.write(line)
	}
}
