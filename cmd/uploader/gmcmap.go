package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// gmcmapUploadURL is the GMC.MAP logging endpoint.
const gmcmapUploadURL = "http://www.GMCmap.com/log2.asp"

// gmcmapUploader pushes short/long-window CPM and, when a calibration
// conversion factor is known, an estimated dose rate to the GMC.MAP
// service.
type gmcmapUploader struct {
	backend   *backend
	accountID string
	geigerID  string
	delay     time.Duration
	client    *http.Client
}

func newGmcmapUploader(b *backend, accountID, geigerID string, delay time.Duration) *gmcmapUploader {
	return &gmcmapUploader{
		backend: b, accountID: accountID, geigerID: geigerID, delay: delay,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *gmcmapUploader) sendUpdate(ctx context.Context) error {
	if g.backend.stale(g.delay) {
		return nil
	}

	avgShort, okShort := g.backend.cpmEstimate(1) // 60s window
	avgLong, okLong := g.backend.cpmEstimate(2)   // 300s window
	if !okShort || !okLong {
		return nil
	}

	_, conversion, _, _, _, _, _ := g.backend.snapshot()

	params := url.Values{}
	params.Set("AID", g.accountID)
	params.Set("GID", g.geigerID)
	params.Set("CPM", fmt.Sprintf("%.2f", avgShort))
	params.Set("ACPM", fmt.Sprintf("%.2f", avgLong))
	if conversion != nil && *conversion > 0 {
		usv := avgShort / float64(*conversion) * 10
		params.Set("uSV", fmt.Sprintf("%.5f", usv))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gmcmapUploadURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (g *gmcmapUploader) spin(ctx context.Context) {
	ticker := time.NewTicker(g.delay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.sendUpdate(ctx); err != nil {
				fmt.Printf("gmcmap: unable to send values: %v\n", err)
			}
		}
	}
}
