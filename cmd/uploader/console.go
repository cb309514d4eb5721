package main

import (
	"context"
	"fmt"
	"time"
)

// consoleLogger periodically prints the backend's rolling averages to
// stdout, skipping ticks where no status update has arrived recently.
type consoleLogger struct {
	backend *backend
	delay   time.Duration
}

func newConsoleLogger(b *backend, delay time.Duration) *consoleLogger {
	return &consoleLogger{backend: b, delay: delay}
}

func (c *consoleLogger) header() string {
	return "time\tbattery\tcpm/(mR/h)\t10s-cpm\t60s-cpm\t5m-cpm\t1h-cpm"
}

func (c *consoleLogger) line() string {
	if c.backend.stale(c.delay) {
		return ""
	}
	battery, conversion, cpm10, cpm60, cpm300, cpm3600, ok := c.backend.snapshot()

	batteryStr := "n/a"
	if battery != nil {
		batteryStr = fmt.Sprintf("%.0f%%", *battery)
	}
	conversionStr := "n/a"
	if conversion != nil {
		conversionStr = fmt.Sprintf("%d", *conversion)
	}

	field := func(v float64, has bool) string {
		if !has {
			return ""
		}
		return fmt.Sprintf("%.1f", v)
	}

	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s",
		time.Now().Format("2006-01-02 15:04:05"),
		batteryStr, conversionStr,
		field(cpm10, ok[0]), field(cpm60, ok[1]), field(cpm300, ok[2]), field(cpm3600, ok[3]))
}

// spin prints the header once and then a line every tick until ctx is
// cancelled.
func (c *consoleLogger) spin(ctx context.Context) {
	fmt.Println(c.header())
	ticker := time.NewTicker(c.delay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if line := c.line(); line != "" {
				fmt.Println(line)
			}
		}
	}
}
