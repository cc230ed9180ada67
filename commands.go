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

// Client-to-server commands, spec.md §6.
const (
	CmdRegister      = "REGISTER"
	CmdLogin         = "LOGIN"
	CmdMsg           = "MSG"
	CmdTyping        = "TYPING"
	CmdPing          = "PING"
	CmdCreateChannel = "CREATE_CHANNEL"
	CmdDeleteChannel = "DELETE_CHANNEL"
	CmdJoinChannel   = "JOIN_CHANNEL"
	CmdLeaveChannel  = "LEAVE_CHANNEL"
)

// Server-to-client responses and events, spec.md §6.
const (
	EvtRegOK               = "REG_OK"
	EvtRegFail             = "REG_FAIL"
	EvtAuthOK              = "AUTH_OK"
	EvtAuthFail            = "AUTH_FAIL"
	EvtMsg                 = "MSG"
	EvtTyping              = "TYPING"
	EvtPong                = "PONG"
	EvtUserlist            = "USERLIST"
	EvtChannelList         = "CHANNEL_LIST"
	EvtChannelUsers        = "CHANNEL_USERS"
	EvtChannelCreated      = "CHANNEL_CREATED"
	EvtChannelDeleted      = "CHANNEL_DELETED"
	EvtChannelDeleteFail   = "CHANNEL_DELETE_FAIL"
	EvtUserJoinedChannel   = "USER_JOINED_CHANNEL"
	EvtUserLeftChannel     = "USER_LEFT_CHANNEL"
	EvtSystem              = "SYSTEM"
)
