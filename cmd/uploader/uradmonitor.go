package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// uradmonitorUploadURL is the uRadMonitor exp-protocol logging endpoint.
const uradmonitorUploadURL = "http://data.uradmonitor.com/api/v1/upload/exp/"

// uradmonitor exp-protocol parameter ids, from detectors.h/expProtocol.h.
const (
	uradmonParamTime = 1
	uradmonParamCPM  = 11
	uradmonParamTube = 16
)

// uradmonitorUploader pushes the long-window CPM average to the
// uRadMonitor service using its header-authenticated RESTful path
// encoding rather than a query string.
type uradmonitorUploader struct {
	backend  *backend
	userID   string
	userHash string
	deviceID string
	delay    time.Duration
	client   *http.Client
}

func newURadMonitorUploader(b *backend, userID, userHash, deviceID string, delay time.Duration) *uradmonitorUploader {
	return &uradmonitorUploader{
		backend: b, userID: userID, userHash: userHash, deviceID: deviceID, delay: delay,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (u *uradmonitorUploader) sendUpdate(ctx context.Context) error {
	if u.backend.stale(u.delay) {
		return nil
	}

	avgLong, ok := u.backend.cpmEstimate(2) // 300s window
	if !ok {
		return nil
	}

	// tube is always reported "unknown" (0) — the session has no way to
	// learn the installed Geiger tube model from the device protocol.
	path := restfulEncode([]restfulParam{
		{uradmonParamTime, fmt.Sprintf("%d", time.Now().Unix())},
		{uradmonParamCPM, fmt.Sprintf("%.2f", avgLong)},
		{uradmonParamTube, "0"},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uradmonitorUploadURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-User-id", u.userID)
	req.Header.Set("X-User-hash", u.userHash)
	req.Header.Set("X-Device-id", u.deviceID)

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (u *uradmonitorUploader) spin(ctx context.Context) {
	ticker := time.NewTicker(u.delay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := u.sendUpdate(ctx); err != nil {
				fmt.Printf("uradmonitor: unable to send values: %v\n", err)
			}
		}
	}
}

type restfulParam struct {
	id    int
	value string
}

// restfulEncode builds the uRadMonitor exp-protocol path
// (/<id>/<value>/<id>/<value>/...), matching _util/net.py's
// URadMonitor._restful_encode.
func restfulEncode(params []restfulParam) string {
	path := ""
	for _, p := range params {
		path += "/" + url.PathEscape(fmt.Sprintf("%d", p.id)) + "/" + url.PathEscape(p.value)
	}
	return path
}
