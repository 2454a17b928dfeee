package main

import (
	"fmt"
	"os"
	"time"

	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/pclink/serialink/internal/config"
	"github.com/pclink/serialink/pkg/link"
	"github.com/pclink/serialink/pkg/transfer"
)

// Exit codes, distinguishable per failure class.
const (
	exitOK            = 0
	exitSerialOpen    = 1
	exitLinkFailure   = 2
	exitTransferError = 3
)

func main() {
	var (
		role         = flag.String("role", "", "tx or rx")
		device       = flag.String("port", "", "serial device path, e.g. /dev/ttyUSB0")
		file         = flag.String("file", "", "file to send (tx) or destination directory (rx)")
		profileName  = flag.String("profile", "default", "named profile to load")
		profilesFile = flag.String("profiles-file", "", "profiles INI file (default: none, built-in defaults)")
		baud         = flag.Int("baud", 0, "override profile baud rate")
		retries      = flag.Int("retries", 0, "override profile retry budget")
		timeoutSec   = flag.Int("timeout", 0, "override profile per-attempt timeout, in seconds")
		showStats    = flag.Bool("stats", true, "print session statistics on close")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *role != "tx" && *role != "rx" {
		fmt.Fprintln(os.Stderr, "serialink: -role must be tx or rx")
		os.Exit(exitSerialOpen)
	}
	if *device == "" || *file == "" {
		fmt.Fprintln(os.Stderr, "serialink: -port and -file are required")
		os.Exit(exitSerialOpen)
	}

	profile, err := config.LoadProfile(*profilesFile, *profileName)
	if err != nil {
		log.Errorf("[CLI] %v", err)
		os.Exit(exitSerialOpen)
	}
	var timeout time.Duration
	if *timeoutSec > 0 {
		timeout = time.Duration(*timeoutSec) * time.Second
	}
	profile = profile.Override(*baud, *retries, timeout)

	port, err := link.OpenSerialPort(*device, profile.Baud)
	if err != nil {
		log.Errorf("[CLI] failed to open %q: %v", *device, err)
		os.Exit(exitSerialOpen)
	}
	defer port.Close()

	opts := link.Options{Retries: profile.Retries, Timeout: profile.Timeout}
	role2 := link.RoleTx
	if *role == "rx" {
		role2 = link.RoleRx
	}
	session := link.NewSession(port, role2, opts)

	if err := session.Open(); err != nil {
		log.Errorf("[CLI] handshake failed: %v", err)
		os.Exit(exitLinkFailure)
	}

	var transferErr error
	if *role == "tx" {
		transferErr = runTransmit(session, *file)
	} else {
		transferErr = runReceive(session, *file)
	}

	stats, closeErr := session.Close(*showStats)
	if *showStats {
		log.Infof("[CLI] frames=%d retransmissions=%d", stats.Frames, stats.Retransmissions)
	}

	if transferErr != nil {
		log.Errorf("[CLI] transfer failed: %v", transferErr)
		os.Exit(exitTransferError)
	}
	if closeErr != nil {
		log.Errorf("[CLI] close failed: %v", closeErr)
		os.Exit(exitLinkFailure)
	}
	os.Exit(exitOK)
}

func runTransmit(session *link.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	tx := transfer.NewTransmitter(session)
	return tx.Send(info.Name(), info.Size(), f)
}

func runReceive(session *link.Session, destDir string) error {
	rx := transfer.NewReceiver(session)
	header, dest, err := rx.ReceiveToFile(destDir)
	if err != nil {
		return err
	}
	log.Infof("[CLI] wrote %q (%d bytes) to %q", header.Name, header.Size, dest)
	return nil
}
