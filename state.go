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
	"net"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/anovak/hybridserver/shared/concurrentmap"
)

// textClientInfo is the per-socket record the registry keeps for an
// authenticated text connection. conn is retained (rather than just the
// bare net.Conn key) so broadcasters can write through its own write
// mutex instead of racing the connection's own goroutine on the same
// socket.
type textClientInfo struct {
	conn     *TextConn
	username string
	channel  string // "" means no channel
}

// voiceClientInfo is the per-socket record the registry keeps for a voice
// connection. channel is a cache, kept in sync by setChannel whenever the
// paired text connection (matched by username) changes channel.
type voiceClientInfo struct {
	conn     *VoiceConn
	username string
	channel  string
}

// Registry is the single shared, process-wide mapping of live text and
// voice sockets to their usernames and channel membership (spec.md §4.4).
//
// All mutations are protected by one coarse lock. The lock is never held
// across socket I/O: callers that need to fan a message out snapshot the
// target set under the lock, release it, then write. This mirrors the
// teacher's per-map RWMutex discipline (ChanMap/ConnMap), collapsed into a
// single mutex because setChannel must atomically update both a text
// connection's channel and its paired voice connection's channel cache —
// spec.md §9 explicitly calls out that per-field locks would make that
// pairing invariant hard to preserve.
type Registry struct {
	mu    sync.Mutex
	text  map[net.Conn]*textClientInfo
	voice map[net.Conn]*voiceClientInfo

	// commandCounts is pure observability: a tally of text commands seen,
	// readable through CommandCounts and never consulted by protocol
	// logic. It is its own
	// concurrent map specifically because it is *not* part of the
	// correctness-critical pairing invariant above, so it is safe (and
	// simpler) to update it outside of mu.
	commandCounts concurrentmap.ConcurrentMap[string, *atomic.Int64]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		text:          make(map[net.Conn]*textClientInfo),
		voice:         make(map[net.Conn]*voiceClientInfo),
		commandCounts: concurrentmap.New[string, *atomic.Int64](),
	}
}

// CountCommand bumps the observability counter for a text command. Safe to
// call without holding the registry lock.
func (r *Registry) CountCommand(command string) {
	counter, ok := r.commandCounts.Get(command)
	if !ok {
		counter = &atomic.Int64{}
		r.commandCounts.Set(command, counter)
	}
	counter.Add(1)
}

// CommandCounts snapshots the observability counters.
func (r *Registry) CommandCounts() map[string]int64 {
	out := make(map[string]int64, r.commandCounts.Length())
	r.commandCounts.ForEach(func(k string, v *atomic.Int64) error {
		out[k] = v.Load()
		return nil
	})
	return out
}

// AddText registers a newly-authenticated text connection with no channel.
func (r *Registry) AddText(conn *TextConn, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text[conn.sock] = &textClientInfo{conn: conn, username: username}
}

// RemoveText removes a text connection. Repeated removal of the same
// socket is a no-op.
func (r *Registry) RemoveText(sock net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.text, sock)
}

// AddVoice registers a newly-identified voice connection. Its channel is
// taken from the text connection with the same username, if one is
// registered; otherwise it starts with no channel.
func (r *Registry) AddVoice(conn *VoiceConn, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info := &voiceClientInfo{conn: conn, username: username}
	for _, tinfo := range r.text {
		if tinfo.username == username {
			info.channel = tinfo.channel
		}
	}
	r.voice[conn.sock] = info
}

// RemoveVoice removes a voice connection. Repeated removal is a no-op.
func (r *Registry) RemoveVoice(sock net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.voice, sock)
}

// SetChannel sets the channel of a text connection and, per spec.md §4.4's
// derived contract, also updates the voice connection belonging to the
// same username (matched by scanning voice entries for the username —
// there is no back-pointer between the two records, by design; see
// spec.md §9). Pass "" to clear the channel.
func (r *Registry) SetChannel(sock net.Conn, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.text[sock]
	if !ok {
		return
	}
	info.channel = channel

	for _, vinfo := range r.voice {
		if vinfo.username == info.username {
			vinfo.channel = channel
		}
	}
}

// UsernameOnline reports whether any authenticated text connection
// currently holds this username.
func (r *Registry) UsernameOnline(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, info := range r.text {
		if info.username == username {
			return true
		}
	}
	return false
}

// UsernameOf returns the username of a text connection, or "" if unknown.
func (r *Registry) UsernameOf(sock net.Conn) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.text[sock]
	if !ok {
		return ""
	}
	return info.username
}

// ChannelOf returns the current channel of a text connection, or "" if
// the connection has none or is unknown.
func (r *Registry) ChannelOf(sock net.Conn) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.text[sock]
	if !ok {
		return ""
	}
	return info.channel
}

// VoiceChannelOf returns the cached channel of a voice connection.
func (r *Registry) VoiceChannelOf(sock net.Conn) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.voice[sock]
	if !ok {
		return ""
	}
	return info.channel
}

// UsersInChannel returns the usernames of text connections currently
// joined to channel.
func (r *Registry) UsersInChannel(channel string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for _, info := range r.text {
		if info.channel == channel {
			names = append(names, info.username)
		}
	}
	return names
}

// TextConnsInChannel returns the TextConns currently joined to channel.
func (r *Registry) TextConnsInChannel(channel string) []*TextConn {
	r.mu.Lock()
	defer r.mu.Unlock()

	var conns []*TextConn
	for _, info := range r.text {
		if info.channel == channel {
			conns = append(conns, info.conn)
		}
	}
	return conns
}

// VoiceConnsInChannel returns the VoiceConns currently associated with
// channel.
func (r *Registry) VoiceConnsInChannel(channel string) []*VoiceConn {
	r.mu.Lock()
	defer r.mu.Unlock()

	var conns []*VoiceConn
	for _, info := range r.voice {
		if info.channel == channel {
			conns = append(conns, info.conn)
		}
	}
	return conns
}

// AllUsernames returns the usernames of every authenticated text
// connection, sorted.
func (r *Registry) AllUsernames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.text))
	for _, info := range r.text {
		names = append(names, info.username)
	}
	sort.Strings(names)
	return names
}

// AllTextConns returns every currently-registered TextConn.
func (r *Registry) AllTextConns() []*TextConn {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := make([]*TextConn, 0, len(r.text))
	for _, info := range r.text {
		conns = append(conns, info.conn)
	}
	return conns
}

// ClearChannelMembers moves every text (and paired voice) connection
// currently in channel to no channel. Used when a channel is deleted
// (spec.md §3 invariant: "When a channel is deleted, all members are
// moved to null").
func (r *Registry) ClearChannelMembers(channel string) []*TextConn {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected []*TextConn
	for _, info := range r.text {
		if info.channel == channel {
			info.channel = ""
			affected = append(affected, info.conn)

			for _, vinfo := range r.voice {
				if vinfo.username == info.username {
					vinfo.channel = ""
				}
			}
		}
	}
	return affected
}
