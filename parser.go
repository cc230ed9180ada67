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
	"strings"
	"unicode/utf8"
)

// ParseLine splits one already-LF-stripped text protocol line into its
// command and payload on the first ':'. There is no escaping: a payload
// may itself contain further colons (e.g. "alice:hi:there"), and it is up
// to the caller to split those further (see SplitFirst).
//
//	ParseLine("MSG:hello")        -> "MSG", "hello", nil
//	ParseLine("PING")             -> "PING", "", nil
//	ParseLine("MSG:alice:hi:there") -> "MSG", "alice:hi:there", nil
func ParseLine(line string) (command, payload string, err error) {
	if len(line) > MaxMsgLength {
		return "", "", ErrLineTooLong
	}

	if !utf8.ValidString(line) {
		return "", "", ErrLineTooLong
	}

	split := strings.SplitN(line, ":", 2)
	command = split[0]
	if len(split) == 2 {
		payload = split[1]
	}
	return command, payload, nil
}

// SplitFirst splits a payload into its first colon-delimited field and the
// remainder, used by handlers that need to pull a sender/name off the
// front of a payload that itself may contain further colons (e.g.
// REGISTER:<user>:<pass>, JOIN_CHANNEL's channel name never needs this,
// but auth commands do).
func SplitFirst(payload string) (first, rest string, ok bool) {
	split := strings.SplitN(payload, ":", 2)
	if len(split) != 2 {
		return split[0], "", false
	}
	return split[0], split[1], true
}
