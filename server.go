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
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/btnmasher/util"
)

// Server holds the state of a hybrid voice/text chat server instance.
type Server struct {
	bindAddress string
	textPort    int
	voicePort   int

	credentialsPath string
	channelsPath    string

	shutdownCtx  context.Context
	drainTimeout time.Duration

	log *logrus.Logger

	credentials *CredentialStore
	channels    *ChannelRegistry
	registry    *Registry
	router      *Router

	textListener  net.Listener
	voiceListener net.Listener

	wg *conc.WaitGroup

	// info holds small, rarely-changing runtime metadata (the build
	// version) exposed to startup logging. The same
	// ConcurrentMapString the teacher used for its ISupport parameters,
	// repurposed for a much smaller set of keys.
	info *util.ConcurrentMapString
}

// NewServer builds a Server from options and loads its persistent stores.
// It does not start listening; call ListenAndServe for that.
func NewServer(opts ...Option) (*Server, error) {
	server := &Server{
		bindAddress:     DefaultBindAddress,
		textPort:        DefaultTextPort,
		voicePort:       DefaultVoicePort,
		credentialsPath: "credentials.json",
		channelsPath:    "channels.json",
		shutdownCtx:     context.Background(),
		drainTimeout:    30 * time.Second,
		log:             logrus.StandardLogger(),
		registry:        NewRegistry(),
		router:          NewRouter(),
		wg:              conc.NewWaitGroup(),
		info:            util.NewConcurrentMapString(),
	}
	server.info.Add("version", "2.0")

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, err
		}
	}

	credentials, err := NewCredentialStore(server.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("hybrid: loading credential store: %w", err)
	}
	server.credentials = credentials

	channels, err := NewChannelRegistry(server.channelsPath)
	if err != nil {
		return nil, fmt.Errorf("hybrid: loading channel registry: %w", err)
	}
	server.channels = channels

	return server, nil
}

// Listen binds both the text and voice listeners without yet accepting any
// connections, so callers (including tests that want an ephemeral port,
// via WithTextPort(0)/WithVoicePort(0)) can read back TextAddr()/VoiceAddr()
// before traffic can arrive.
func (server *Server) Listen() error {
	textListener, err := listenKeepAlive(server.bindAddress, server.textPort)
	if err != nil {
		return fmt.Errorf("hybrid: binding text listener: %w", err)
	}
	server.textListener = textListener

	voiceListener, err := listenKeepAlive(server.bindAddress, server.voicePort)
	if err != nil {
		textListener.Close()
		return fmt.Errorf("hybrid: binding voice listener: %w", err)
	}
	server.voiceListener = voiceListener

	server.log.Infof("hybrid: text listener on %s", textListener.Addr())
	server.log.Infof("hybrid: voice listener on %s", voiceListener.Addr())
	return nil
}

// tcpKeepAliveListener enables TCP keep-alive on every accepted connection,
// so a peer that vanishes without closing (a dropped wifi link, a killed
// client) eventually gets noticed at the transport layer instead of
// pinning a goroutine and a registry entry forever. This is independent of
// spec.md §5's prohibition on application-level timeouts: keep-alive
// probes never abort a blocked Read/Write on their own, the OS just tears
// down the socket once probing fails, which surfaces as an ordinary read
// error to the owning goroutine.
type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (listen tcpKeepAliveListener) Accept() (net.Conn, error) {
	conn, err := listen.AcceptTCP()
	if err != nil {
		return nil, err
	}
	conn.SetKeepAlive(true)
	conn.SetKeepAlivePeriod(KeepAliveTimeout)
	return conn, nil
}

func listenKeepAlive(bindAddress string, port int) (net.Listener, error) {
	listen, err := net.Listen("tcp", fmt.Sprintf("%s:%d", bindAddress, port))
	if err != nil {
		return nil, err
	}
	return tcpKeepAliveListener{listen.(*net.TCPListener)}, nil
}

// TextAddr returns the text listener's bound address. Valid only after
// Listen (or ListenAndServe) has returned successfully.
func (server *Server) TextAddr() net.Addr {
	return server.textListener.Addr()
}

// VoiceAddr returns the voice listener's bound address. Valid only after
// Listen (or ListenAndServe) has returned successfully.
func (server *Server) VoiceAddr() net.Addr {
	return server.voiceListener.Addr()
}

// ListenAndServe binds both listeners (if not already bound by a prior
// call to Listen) and blocks accepting connections until a graceful
// shutdown context (see WithGracefulShutdown) is cancelled, or either
// listener fails. It always returns a non-nil error; ErrServerClosed
// indicates a clean shutdown.
func (server *Server) ListenAndServe() error {
	if server.textListener == nil {
		if err := server.Listen(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 2)

	server.wg.Go(func() {
		errCh <- serveAccept(server, server.textListener, "text", runText)
	})
	server.wg.Go(func() {
		errCh <- serveAccept(server, server.voiceListener, "voice", runVoice)
	})

	go func() {
		<-server.shutdownCtx.Done()
		server.log.Info("hybrid: shutdown requested, closing listeners")
		server.textListener.Close()
		server.voiceListener.Close()
	}()

	firstErr := <-errCh
	server.textListener.Close()
	server.voiceListener.Close()
	secondErr := <-errCh

	select {
	case <-server.shutdownCtx.Done():
		return ErrServerClosed
	default:
	}

	if firstErr != nil {
		return firstErr
	}
	return secondErr
}

// serveAccept runs the accept loop for one listener, dispatching every
// accepted socket to its own goroutine. Transient accept errors are
// retried with exponential backoff bounded by AcceptRetryMin/Max,
// mirroring the teacher's Serve loop; a non-temporary error (including
// the listener being closed for shutdown) ends the loop.
func serveAccept(server *Server, listen net.Listener, kind string, handle func(*Server, net.Conn)) error {
	var tempDelay time.Duration

	for {
		sock, err := listen.Accept()
		if err != nil {
			if neterr, ok := err.(net.Error); ok && neterr.Timeout() {
				if tempDelay == 0 {
					tempDelay = AcceptRetryMin
				} else {
					tempDelay *= 2
				}
				if tempDelay > AcceptRetryMax {
					tempDelay = AcceptRetryMax
				}
				server.log.Errorf("hybrid: %s accept error: %v; retrying in %v", kind, err, tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			return err
		}

		tempDelay = 0
		server.wg.Go(func() {
			handle(server, sock)
		})
	}
}

// Shutdown waits up to drainTimeout for in-flight connection goroutines to
// finish after the listeners have been closed by the graceful-shutdown
// context. Call it after ListenAndServe returns.
func (server *Server) Shutdown() {
	done := make(chan struct{})
	go func() {
		server.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(server.drainTimeout):
		server.log.Warn("hybrid: shutdown drain timeout elapsed with connections still active")
	}
}

// ChannelNames returns the server's configured channel names, for startup
// banner logging.
func (server *Server) ChannelNames() []string {
	return server.channels.List()
}

// Info returns a key=value rendering of the server's runtime metadata,
// the same shape the teacher's ISupport() produced for its IRC parameter
// set.
func (server *Server) Info() []string {
	info := make([]string, 0, server.info.Length())
	server.info.ForEach(func(key, value string) {
		info = append(info, key+"="+value)
	})
	return info
}

// RegisteredUserCount returns the number of registered accounts, for
// startup banner logging.
func (server *Server) RegisteredUserCount() int {
	return server.credentials.Count()
}
