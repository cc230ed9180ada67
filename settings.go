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

import "time"

// Default listener configuration.
const (
	DefaultBindAddress string = "0.0.0.0"
	DefaultTextPort     int    = 5557
	DefaultVoicePort    int    = 5556
)

// Limiter constants.
const (
	// Text protocol
	MaxMsgLength int = 4096

	// Credentials
	MinUsernameLength = 2
	MaxUsernameLength = 32
	MinPasswordLength = 4

	// Channels
	MinChanLength = 1
	MaxChanLength = 32

	// Voice
	MaxVoiceFrame     = 65536
	MaxVoiceNickRead  = 1024
	CodecRawPCM       = 0x00
	CodecOpus         = 0x01
)

// DefaultChannelName is the permanent channel guaranteed to exist after
// first boot.
const DefaultChannelName = "General"

// AcceptRetryMin and AcceptRetryMax bound the exponential backoff applied
// to transient accept-loop errors.
const (
	AcceptRetryMin time.Duration = 5 * time.Millisecond
	AcceptRetryMax time.Duration = 1 * time.Second
)

// KeepAliveTimeout sets the TCP keep-alive probe period on accepted text
// and voice connections.
const KeepAliveTimeout time.Duration = 2 * time.Minute

// MessagePoolMax sets the message object pool buffer length.
const MessagePoolMax = 1000

// VoiceBufferPoolMax is not read by voiceBufPool, which is backed by a
// sync.Pool and has no fixed length.
const VoiceBufferPoolMax = 256
