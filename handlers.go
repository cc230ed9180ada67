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

// handleMsg forwards a chat message to every other member of the
// sender's current channel. Senders with no channel produce no output.
func handleMsg(conn *TextConn, payload string) {
	channel := conn.server.registry.ChannelOf(conn.sock)
	if channel == "" {
		return
	}
	broadcastText(conn.server, newLine(CmdMsg, conn.username, payload), conn, channel)
}

// handleTyping relays a typing indicator to the sender's channel, same
// membership rule as handleMsg.
func handleTyping(conn *TextConn, payload string) {
	channel := conn.server.registry.ChannelOf(conn.sock)
	if channel == "" {
		return
	}
	broadcastText(conn.server, newLine(CmdTyping, conn.username), conn, channel)
}

// handlePing answers with PONG and carries no channel membership
// requirement.
func handlePing(conn *TextConn, payload string) {
	conn.reply(EvtPong)
}

// handleCreateChannel creates a new, non-permanent channel and, on
// success, announces it and refreshes the channel list for everyone.
func handleCreateChannel(conn *TextConn, payload string) {
	if !allowChannelAdmin(conn.username) {
		conn.reply(EvtChannelDeleteFail, ReasonUnknownCommand)
		return
	}
	if ok, reason := conn.server.channels.Create(payload); ok {
		broadcastText(conn.server, newLine(EvtChannelCreated, payload), nil, "")
		sendChannelList(conn.server, nil)
	} else {
		conn.reply(EvtChannelDeleteFail, reason)
	}
}

// handleDeleteChannel deletes a non-permanent channel, moves its former
// members to no channel, and announces the deletion. Members are
// reassigned before the deletion is broadcast, so any CHANNEL_USERS
// refresh a client derives from the deletion never names the deleted
// channel.
func handleDeleteChannel(conn *TextConn, payload string) {
	if !allowChannelAdmin(conn.username) {
		conn.reply(EvtChannelDeleteFail, ReasonUnknownCommand)
		return
	}
	if ok, reason := conn.server.channels.Delete(payload); ok {
		conn.server.registry.ClearChannelMembers(payload)
		broadcastText(conn.server, newLine(EvtChannelDeleted, payload), nil, "")
		sendChannelList(conn.server, nil)
	} else {
		conn.reply(EvtChannelDeleteFail, reason)
	}
}

// handleJoinChannel moves conn from its current channel (if any) to
// payload, refreshing CHANNEL_USERS for both the old and new channel.
func handleJoinChannel(conn *TextConn, payload string) {
	if !conn.server.channels.Exists(payload) {
		conn.replySystem(ReasonChannelNotFound)
		return
	}

	oldChannel := conn.server.registry.ChannelOf(conn.sock)
	if oldChannel != "" {
		conn.server.registry.SetChannel(conn.sock, "")
		broadcastText(conn.server, newLine(EvtUserLeftChannel, conn.username, oldChannel), nil, "")
		sendChannelUsers(conn.server, oldChannel)
	}

	conn.server.registry.SetChannel(conn.sock, payload)
	broadcastText(conn.server, newLine(EvtUserJoinedChannel, conn.username, payload), nil, "")
	sendChannelUsers(conn.server, payload)
}

// handleLeaveChannel removes conn from its current channel, if any.
func handleLeaveChannel(conn *TextConn, payload string) {
	oldChannel := conn.server.registry.ChannelOf(conn.sock)
	if oldChannel == "" {
		return
	}
	conn.server.registry.SetChannel(conn.sock, "")
	broadcastText(conn.server, newLine(EvtUserLeftChannel, conn.username, oldChannel), nil, "")
	sendChannelUsers(conn.server, oldChannel)
}
