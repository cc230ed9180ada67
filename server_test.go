/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package hybrid

import (
	"bufio"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// testServer boots a Server on ephemeral loopback ports backed by
// throwaway JSON stores, and closes both listeners when the test ends.
func testServer(t *testing.T) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(testWriter{t})
	logger.SetLevel(logrus.WarnLevel)

	server, err := NewServer(
		WithBindAddress("127.0.0.1"),
		WithTextPort(0),
		WithVoicePort(0),
		WithCredentialStorePath(filepath.Join(t.TempDir(), "credentials.json")),
		WithChannelStorePath(filepath.Join(t.TempDir(), "channels.json")),
		WithLogger(logger),
	)
	require.NoError(t, err)
	require.NoError(t, server.Listen())

	go server.ListenAndServe()
	t.Cleanup(func() {
		server.textListener.Close()
		server.voiceListener.Close()
	})

	return server
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func dialText(t *testing.T, server *Server) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", server.TextAddr().String())
	require.NoError(t, err)
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func dialVoice(t *testing.T, server *Server) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", server.VoiceAddr().String())
	require.NoError(t, err)
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
}

func expectLine(t *testing.T, reader *bufio.Reader, want string) {
	t.Helper()
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, want+"\n", line)
}

func drainLines(t *testing.T, reader *bufio.Reader, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := reader.ReadString('\n')
		require.NoError(t, err)
	}
}

func assertNoMoreInput(t *testing.T, conn net.Conn, reader *bufio.Reader) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, err := reader.ReadByte()
	require.Error(t, err)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
}

// loginNewUser registers and logs a brand new user in, consuming the
// three lines spec.md §4.5 Phase B sends directly to a freshly
// authenticated connection: AUTH_OK, the refreshed USERLIST (which this
// new connection, being a broadcast target itself, also receives), and
// its own private CHANNEL_LIST.
func loginNewUser(t *testing.T, server *Server, username, password, userlist string) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn := dialText(t, server)
	reader := bufio.NewReader(conn)

	sendLine(t, conn, "REGISTER:"+username+":"+password)
	expectLine(t, reader, "REG_OK")
	sendLine(t, conn, "LOGIN:"+username+":"+password)
	expectLine(t, reader, "AUTH_OK")
	expectLine(t, reader, "USERLIST:"+userlist)
	expectLine(t, reader, "CHANNEL_LIST:"+DefaultChannelName)

	return conn, reader
}

// TestRegisterThenLogin is spec scenario 1: register, then log in, and
// observe the exact reply sequence a solitary first connection sees.
func TestRegisterThenLogin(t *testing.T) {
	server := testServer(t)
	loginNewUser(t, server, "alice", "pw1234", "alice")
}

// TestDuplicateLogin is spec scenario 2: a second LOGIN for an
// already-online user is rejected, and the connection stays in the
// auth phase afterward.
func TestDuplicateLogin(t *testing.T) {
	server := testServer(t)
	loginNewUser(t, server, "alice", "pw1234", "alice")

	conn := dialText(t, server)
	reader := bufio.NewReader(conn)

	sendLine(t, conn, "LOGIN:alice:pw1234")
	expectLine(t, reader, "AUTH_FAIL:"+ReasonAlreadyOnline)

	sendLine(t, conn, "PING")
	expectLine(t, reader, "AUTH_FAIL:"+ReasonLoginFirst)
}

// TestChannelMessageIsolation is spec scenario 3: a MSG only reaches
// members of the sender's own channel, never a member of a different
// channel.
func TestChannelMessageIsolation(t *testing.T) {
	server := testServer(t)

	aliceConn, aliceReader := loginNewUser(t, server, "alice", "pw1234", "alice")
	bobConn, bobReader := loginNewUser(t, server, "bob", "pw1234", "alice,bob")
	drainLines(t, aliceReader, 2) // SYSTEM join + USERLIST refresh for bob's login

	sendLine(t, aliceConn, "JOIN_CHANNEL:"+DefaultChannelName)
	drainLines(t, aliceReader, 2) // USER_JOINED_CHANNEL, CHANNEL_USERS
	drainLines(t, bobReader, 2)

	sendLine(t, bobConn, "JOIN_CHANNEL:"+DefaultChannelName)
	drainLines(t, aliceReader, 2)
	drainLines(t, bobReader, 2)

	carolConn, carolReader := loginNewUser(t, server, "carol", "pw1234", "alice,bob,carol")
	drainLines(t, aliceReader, 2)
	drainLines(t, bobReader, 2)

	sendLine(t, aliceConn, "CREATE_CHANNEL:Dev")
	drainLines(t, aliceReader, 2) // CHANNEL_CREATED, CHANNEL_LIST
	drainLines(t, bobReader, 2)
	drainLines(t, carolReader, 2)

	sendLine(t, carolConn, "JOIN_CHANNEL:Dev")
	drainLines(t, aliceReader, 2) // USER_JOINED_CHANNEL:carol:Dev, CHANNEL_USERS:Dev:carol
	drainLines(t, bobReader, 2)
	drainLines(t, carolReader, 2)

	sendLine(t, aliceConn, "MSG:hi")
	expectLine(t, bobReader, "MSG:alice:hi")
	assertNoMoreInput(t, carolConn, carolReader)
}

// TestVoiceFanoutRespectsChannel is spec scenario 6: a voice frame from
// one party reaches a same-channel peer byte-for-byte but never a party
// parked in a different channel.
func TestVoiceFanoutRespectsChannel(t *testing.T) {
	server := testServer(t)

	aliceConn, aliceReader := loginNewUser(t, server, "alice", "pw1234", "alice")
	bobConn, bobReader := loginNewUser(t, server, "bob", "pw1234", "alice,bob")
	drainLines(t, aliceReader, 2) // SYSTEM join + USERLIST refresh for bob's login

	carolConn, carolReader := loginNewUser(t, server, "carol", "pw1234", "alice,bob,carol")
	drainLines(t, aliceReader, 2)
	drainLines(t, bobReader, 2)

	// Voice identifies before any JOIN_CHANNEL, so that SetChannel's
	// username-matching cascade (state.go) has a voice record to update
	// by the time each text client joins a channel.
	aliceVoice := dialVoice(t, server)
	bobVoice := dialVoice(t, server)
	carolVoice := dialVoice(t, server)

	_, err := aliceVoice.Write([]byte("alice"))
	require.NoError(t, err)
	_, err = bobVoice.Write([]byte("bob"))
	require.NoError(t, err)
	_, err = carolVoice.Write([]byte("carol"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond) // let all three identify() reads land before any JOIN_CHANNEL

	sendLine(t, aliceConn, "JOIN_CHANNEL:"+DefaultChannelName)
	drainLines(t, aliceReader, 2)
	drainLines(t, bobReader, 2)
	drainLines(t, carolReader, 2)

	sendLine(t, bobConn, "JOIN_CHANNEL:"+DefaultChannelName)
	drainLines(t, aliceReader, 2)
	drainLines(t, bobReader, 2)
	drainLines(t, carolReader, 2)

	sendLine(t, aliceConn, "CREATE_CHANNEL:Dev")
	drainLines(t, aliceReader, 2)
	drainLines(t, bobReader, 2)
	drainLines(t, carolReader, 2)

	sendLine(t, carolConn, "JOIN_CHANNEL:Dev")
	drainLines(t, aliceReader, 2)
	drainLines(t, bobReader, 2)
	drainLines(t, carolReader, 2)
	time.Sleep(20 * time.Millisecond) // let the JOIN_CHANNEL SetChannel cascades settle

	frame := EncodeVoiceFrame("alice", CodecOpus, []byte{1, 2, 3, 4})
	_, err = aliceVoice.Write(frame)
	require.NoError(t, err)

	bobVoice.SetReadDeadline(time.Now().Add(2 * time.Second))
	got := make([]byte, len(frame))
	_, err = readFull(bobVoice, got)
	require.NoError(t, err)
	require.Equal(t, frame, got)

	assertNoMoreVoiceInput(t, carolVoice)
}

func assertNoMoreVoiceInput(t *testing.T, conn net.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	buf := make([]byte, 1)
	_, err := conn.Read(buf)
	require.Error(t, err)
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
