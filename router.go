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

// CommandHandler processes one session-phase command. It receives the
// owning TextConn and the already-split payload string.
type CommandHandler func(conn *TextConn, payload string)

// Router maps session-phase command names to their handlers, the same
// shape as the teacher's command dispatch table but without the
// middleware-chain machinery: this protocol's only "middleware" concern
// is the auth gate, and that's already modeled by the two-phase state
// machine in textconn.go rather than a per-command chain.
type Router struct {
	handlers map[string]CommandHandler
}

// NewRouter builds the session-phase command table exactly as specified
// in spec.md §4.5's command table.
func NewRouter() *Router {
	r := &Router{handlers: make(map[string]CommandHandler)}

	r.handle(CmdMsg, handleMsg)
	r.handle(CmdTyping, handleTyping)
	r.handle(CmdPing, handlePing)
	r.handle(CmdCreateChannel, handleCreateChannel)
	r.handle(CmdDeleteChannel, handleDeleteChannel)
	r.handle(CmdJoinChannel, handleJoinChannel)
	r.handle(CmdLeaveChannel, handleLeaveChannel)

	return r
}

func (r *Router) handle(command string, fn CommandHandler) {
	if _, exists := r.handlers[command]; exists {
		panic("handler already registered for command: " + command)
	}
	r.handlers[command] = fn
}

// Route dispatches one command. Unknown commands get the catch-all
// SYSTEM:Неизвестная команда reply, per spec.md §4.5.
func (r *Router) Route(conn *TextConn, command, payload string) {
	conn.server.registry.CountCommand(command)

	handler, exists := r.handlers[command]
	if !exists {
		conn.replySystem(ReasonUnknownCommand)
		return
	}
	handler(conn, payload)
}
