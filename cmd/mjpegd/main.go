package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ayusman/mjpegd/internal/capture"
	"github.com/ayusman/mjpegd/internal/server"
	"github.com/ayusman/mjpegd/internal/stream"
)

func main() {
	var (
		host    = pflag.String("host", server.DefaultHost, "address to bind to")
		port    = pflag.Int("port", server.DefaultPort, "port to bind to")
		timeout = pflag.Uint("timeout", 10, "streaming write timeout, seconds")
		refresh = pflag.Uint("refresh-interval", 30000, "frame refresh interval, microseconds")
		device  = pflag.Int("device", 0, "capture device index")
		width   = pflag.Int("width", capture.DefaultWidth, "capture width")
		height  = pflag.Int("height", capture.DefaultHeight, "capture height")
		fps     = pflag.Int("fps", capture.DefaultFPS, "capture frame rate")
		verbose = pflag.BoolP("verbose", "v", false, "log refresh and client activity")
	)
	pflag.Parse()

	source := stream.NewSource()

	cam := capture.NewCamera(*device, capture.Config{
		Width:  *width,
		Height: *height,
		FPS:    *fps,
	})
	if err := cam.Open(); err != nil {
		// Keep serving the blank picture; the stream reports offline.
		log.Printf("capture device %d unavailable: %v", *device, err)
	} else {
		if err := cam.Start(source); err != nil {
			log.Fatalf("failed to start capture: %v", err)
		}
		defer cam.Close()
	}

	srv := server.New(source, server.Config{
		Host:            *host,
		Port:            *port,
		Timeout:         time.Duration(*timeout) * time.Second,
		RefreshInterval: time.Duration(*refresh) * time.Microsecond,
		Verbose:         *verbose,
	})

	if err := srv.Listen(); err != nil {
		log.Fatalf("failed to bind: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Printf("shutting down")
		srv.Break()
	}()

	if err := srv.Serve(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
