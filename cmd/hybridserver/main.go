/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	hybrid "github.com/anovak/hybridserver"
	"github.com/anovak/hybridserver/shared/stringutils"

	"github.com/btnmasher/util"
	"github.com/sirupsen/logrus"
)

// bannerBufPool backs the banner's line assembly, so a restart loop (e.g.
// under a process supervisor) doesn't churn one-off buffers on every
// startup print.
var bannerBufPool = util.NewBufferPool(4)

// localIP discovers the outbound-facing local address the same way
// original_source/server/main.py's get_local_ip does: open a UDP "connection"
// to a well-known address and read back the local endpoint it would use,
// without actually sending any traffic.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "не удалось определить"
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "не удалось определить"
	}
	return addr.IP.String()
}

func printBanner(textPort, voicePort int, channels, info []string, registeredUsers int) {
	buf := bannerBufPool.New()
	defer bannerBufPool.Recycle(buf)

	rule := strings.Repeat("=", 50)
	buf.WriteString(rule + "\n")
	buf.WriteString("  HYBRID Server\n")
	buf.WriteString(rule + "\n")
	fmt.Fprintf(buf, "  Текстовый сервер: порт %d\n", textPort)
	fmt.Fprintf(buf, "  Голосовой сервер: порт %d\n", voicePort)
	fmt.Fprintf(buf, "  Локальный IP: %s\n", localIP())
	for _, line := range stringutils.ChunkJoinStrings(120, ", ", channels...) {
		fmt.Fprintf(buf, "  Каналы: %s\n", line)
	}
	fmt.Fprintf(buf, "  Зарегистрировано пользователей: %d\n", registeredUsers)
	fmt.Fprintf(buf, "  %s\n", strings.Join(info, " "))
	buf.WriteString(rule + "\n")
	buf.WriteString("Ожидание подключений...\n")

	fmt.Print(buf.String())
}

func main() {
	mainContext, shutdown := context.WithCancel(context.Background())
	defer shutdown()

	wg := conc.NewWaitGroup()
	defer wg.Wait()

	shutdownTimeout := 30 * time.Second
	logger := logrus.New()

	server, err := hybrid.NewServer(
		hybrid.WithBindAddress(hybrid.DefaultBindAddress),
		hybrid.WithTextPort(hybrid.DefaultTextPort),
		hybrid.WithVoicePort(hybrid.DefaultVoicePort),
		hybrid.WithCredentialStorePath("credentials.json"),
		hybrid.WithChannelStorePath("channels.json"),
		hybrid.WithLogger(logger),
		hybrid.WithLogLevel(logrus.InfoLevel),
		hybrid.WithDefaultLogFormatter(),
		hybrid.WithGracefulShutdown(mainContext, shutdownTimeout),
	)
	if err != nil {
		logger.Fatal(err)
	}

	printBanner(hybrid.DefaultTextPort, hybrid.DefaultVoicePort, server.ChannelNames(), server.Info(), server.RegisteredUserCount())

	wg.Go(func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, hybrid.ErrServerClosed) {
			logger.Fatal(fmt.Errorf("failed to start server: %w", err))
		}
	})

	log := logger.WithField("component", "main")
	killSignals := make(chan os.Signal, 1)
	signal.Notify(killSignals, syscall.SIGINT, syscall.SIGTERM)

	sig := <-killSignals
	log.Infof("initializing server shutdown, received signal: %s", sig)
	shutdown()
	server.Shutdown()
}
