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
	"context"
	"time"

	"github.com/sirupsen/logrus"
	formatter "github.com/antonfisher/nested-logrus-formatter"
)

// Option configures a Server at construction time. Options are applied in
// the order passed to NewServer, so a later option overrides an earlier
// one touching the same field.
type Option func(*Server) error

// WithBindAddress sets the address both listeners bind to. Defaults to
// DefaultBindAddress.
func WithBindAddress(addr string) Option {
	return func(s *Server) error {
		s.bindAddress = addr
		return nil
	}
}

// WithTextPort sets the text control-plane listener's port. Defaults to
// DefaultTextPort.
func WithTextPort(port int) Option {
	return func(s *Server) error {
		s.textPort = port
		return nil
	}
}

// WithVoicePort sets the voice data-plane listener's port. Defaults to
// DefaultVoicePort.
func WithVoicePort(port int) Option {
	return func(s *Server) error {
		s.voicePort = port
		return nil
	}
}

// WithCredentialStorePath sets the path of the JSON file backing the
// server's CredentialStore.
func WithCredentialStorePath(path string) Option {
	return func(s *Server) error {
		s.credentialsPath = path
		return nil
	}
}

// WithChannelStorePath sets the path of the JSON file backing the
// server's ChannelRegistry.
func WithChannelStorePath(path string) Option {
	return func(s *Server) error {
		s.channelsPath = path
		return nil
	}
}

// WithLogger sets the logrus.Logger the server and its connections log
// through. Defaults to logrus.StandardLogger().
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

// WithLogLevel sets the logging level on the server's logger.
func WithLogLevel(level logrus.Level) Option {
	return func(s *Server) error {
		s.log.SetLevel(level)
		return nil
	}
}

// WithDefaultLogFormatter installs the nested key=value formatter used
// throughout startup and connection logging.
func WithDefaultLogFormatter() Option {
	return func(s *Server) error {
		s.log.SetFormatter(&formatter.Formatter{
			HideKeys:    true,
			FieldsOrder: []string{"component", "remote"},
		})
		return nil
	}
}

// WithGracefulShutdown arms the server to stop accepting new connections
// and close both listeners when ctx is cancelled. drainTimeout bounds how
// long Shutdown waits for in-flight connection goroutines to finish before
// returning.
func WithGracefulShutdown(ctx context.Context, drainTimeout time.Duration) Option {
	return func(s *Server) error {
		s.shutdownCtx = ctx
		s.drainTimeout = drainTimeout
		return nil
	}
}
