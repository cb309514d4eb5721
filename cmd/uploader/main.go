package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jigpu/radalert-go/internal/config"
	"github.com/jigpu/radalert-go/internal/session"
	"github.com/jigpu/radalert-go/internal/transport"
	"github.com/jigpu/radalert-go/pkg/radalert"
)

func main() {
	bleAddr := flag.String("ble", "", "connect over BLE to the peripheral at this address")
	useHID := flag.Bool("hid", false, "connect over USB HID")
	httpAddr := flag.String("http", ":8090", "address for the /latest status endpoint")
	flag.Parse()

	if (*bleAddr == "") == *useHID {
		fmt.Fprintln(os.Stderr, "specify exactly one of -ble=<address> or -hid")
		os.Exit(1)
	}

	cfg, err := config.LoadUploaderConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "uploader: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := newBackend()

	go newConsoleLogger(b, cfg.ConsoleInterval).spin(ctx)
	if cfg.GmcmapEnabled() {
		go newGmcmapUploader(b, cfg.GmcmapAcctID, cfg.GmcmapGCID, cfg.GmcmapInterval).spin(ctx)
	}
	if cfg.RadmonEnabled() {
		go newRadmonUploader(b, cfg.RadmonUserID, cfg.RadmonDataPW, cfg.RadmonInterval).spin(ctx)
	}
	if cfg.URadMonitorEnabled() {
		go newURadMonitorUploader(b, cfg.URadMonUserID, cfg.URadMonUserHash, cfg.URadMonDeviceID, cfg.URadMonInterval).spin(ctx)
	}

	srv := newStatusServer(b, cfg.ConsoleInterval)
	go func() {
		if err := srv.Run(*httpAddr); err != nil {
			fmt.Fprintf(os.Stderr, "uploader: http server: %v\n", err)
		}
	}()

	var sessErr error
	if *bleAddr != "" {
		sessErr = runBLESession(ctx, *bleAddr, b)
	} else {
		sessErr = runHIDSession(ctx, b)
	}
	if sessErr != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "uploader: session ended: %v\n", sessErr)
		os.Exit(1)
	}
}

func runBLESession(ctx context.Context, addr string, b *backend) error {
	t, err := transport.DialBLE(ctx, addr)
	if err != nil {
		return err
	}
	defer t.Close()

	sess := session.NewBLESession(t,
		func(s *radalert.BLEStatus) { b.onStatus(s) },
		func(q *radalert.BLEQuery) { b.onQuery(q) },
	)
	go func() {
		time.Sleep(200 * time.Millisecond)
		if info, ok := sess.DeviceInfo(); ok {
			fmt.Printf("uploader: device manufacturer=%q model=%q serial=%q fw=%q\n",
				info.Manufacturer, info.Model, info.SerialNumber, info.FirmwareRevision)
		}
	}()
	return sess.Spin(ctx)
}

func runHIDSession(ctx context.Context, b *backend) error {
	t, err := transport.OpenHID(transport.USBVendorID, transport.USBProductID)
	if err != nil {
		return err
	}
	defer t.Close()

	sess := session.NewHIDSession(t, t,
		func(s *radalert.HIDStatus) { b.onStatus(s) },
		func(q *radalert.HIDQuery) { b.onQuery(q) },
	)
	return sess.Spin(ctx)
}
