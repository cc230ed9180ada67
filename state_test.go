/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package hybrid

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newTestConnPair() (near, far net.Conn) {
	return net.Pipe()
}

var _ = Describe("Registry", func() {
	var registry *Registry

	BeforeEach(func() {
		registry = NewRegistry()
	})

	Describe("AddText / RemoveText", func() {
		It("tracks an authenticated text connection", func() {
			near, far := newTestConnPair()
			defer near.Close()
			defer far.Close()

			conn := &TextConn{sock: near}
			registry.AddText(conn, "alice")

			Expect(registry.UsernameOnline("alice")).To(BeTrue())
			Expect(registry.UsernameOf(near)).To(Equal("alice"))
			Expect(registry.AllUsernames()).To(ConsistOf("alice"))

			registry.RemoveText(near)
			Expect(registry.UsernameOnline("alice")).To(BeFalse())
		})

		It("is a no-op removing an unknown socket", func() {
			near, _ := newTestConnPair()
			defer near.Close()

			Expect(func() { registry.RemoveText(near) }).NotTo(Panic())
		})
	})

	Describe("SetChannel", func() {
		It("cascades a text connection's channel to its paired voice connection", func() {
			textNear, textFar := newTestConnPair()
			defer textNear.Close()
			defer textFar.Close()
			voiceNear, voiceFar := newTestConnPair()
			defer voiceNear.Close()
			defer voiceFar.Close()

			textConn := &TextConn{sock: textNear}
			voiceConn := &VoiceConn{sock: voiceNear}

			registry.AddText(textConn, "alice")
			registry.AddVoice(voiceConn, "alice")

			registry.SetChannel(textNear, "General")

			Expect(registry.ChannelOf(textNear)).To(Equal("General"))
			Expect(registry.VoiceChannelOf(voiceNear)).To(Equal("General"))
		})

		It("clears the channel when passed an empty string", func() {
			near, _ := newTestConnPair()
			defer near.Close()

			conn := &TextConn{sock: near}
			registry.AddText(conn, "bob")
			registry.SetChannel(near, "General")
			registry.SetChannel(near, "")

			Expect(registry.ChannelOf(near)).To(Equal(""))
		})
	})

	Describe("ClearChannelMembers", func() {
		It("moves every member of a deleted channel to no channel", func() {
			aliceNear, aliceFar := newTestConnPair()
			defer aliceNear.Close()
			defer aliceFar.Close()
			bobNear, bobFar := newTestConnPair()
			defer bobNear.Close()
			defer bobFar.Close()

			aliceConn := &TextConn{sock: aliceNear}
			bobConn := &TextConn{sock: bobNear}

			registry.AddText(aliceConn, "alice")
			registry.AddText(bobConn, "bob")
			registry.SetChannel(aliceNear, "random")
			registry.SetChannel(bobNear, "random")

			affected := registry.ClearChannelMembers("random")

			Expect(affected).To(HaveLen(2))
			Expect(registry.ChannelOf(aliceNear)).To(Equal(""))
			Expect(registry.ChannelOf(bobNear)).To(Equal(""))
		})
	})

	Describe("CountCommand", func() {
		It("tallies commands independently of the correctness-critical lock", func() {
			registry.CountCommand(CmdMsg)
			registry.CountCommand(CmdMsg)
			registry.CountCommand(CmdPing)

			counts := registry.CommandCounts()
			Expect(counts[CmdMsg]).To(BeEquivalentTo(2))
			Expect(counts[CmdPing]).To(BeEquivalentTo(1))
		})
	})
})
