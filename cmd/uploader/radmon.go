package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// radmonUploadURL is the Radmon logging endpoint.
const radmonUploadURL = "http://radmon.org/radmon.php"

// radmonUploader pushes the long-window CPM average to the Radmon service.
type radmonUploader struct {
	backend *backend
	userID  string
	dataPW  string
	delay   time.Duration
	client  *http.Client
}

func newRadmonUploader(b *backend, userID, dataPW string, delay time.Duration) *radmonUploader {
	return &radmonUploader{
		backend: b, userID: userID, dataPW: dataPW, delay: delay,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *radmonUploader) sendUpdate(ctx context.Context) error {
	if r.backend.stale(r.delay) {
		return nil
	}

	avgLong, ok := r.backend.cpmEstimate(2) // 300s window
	if !ok {
		return nil
	}

	params := url.Values{}
	params.Set("function", "submit")
	params.Set("user", r.userID)
	params.Set("password", r.dataPW)
	params.Set("value", fmt.Sprintf("%.2f", avgLong))
	params.Set("unit", "CPM")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, radmonUploadURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (r *radmonUploader) spin(ctx context.Context) {
	ticker := time.NewTicker(r.delay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.sendUpdate(ctx); err != nil {
				fmt.Printf("radmon: unable to send values: %v\n", err)
			}
		}
	}
}
