package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jigpu/radalert-go/internal/session"
	"github.com/jigpu/radalert-go/internal/transport"
	"github.com/jigpu/radalert-go/pkg/radalert"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF00")).
			Padding(0, 2).
			Bold(true).
			Width(78)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4B5563")).
			Padding(0, 2).
			Width(78)

	logViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Width(78)
)

// recordMsg carries one decoded record (of either kind) from the session
// goroutine into the bubbletea Update loop.
type recordMsg struct {
	line string
}

type sessionEndedMsg struct {
	err error
}

type model struct {
	records  chan recordMsg
	done     chan sessionEndedMsg
	log      viewport.Model
	lines    []string
	lastErr  error
	quitting bool
}

func newModel(records chan recordMsg, done chan sessionEndedMsg) model {
	vp := viewport.New(76, 16)
	return model{records: records, done: done, log: vp}
}

func waitForRecord(ch chan recordMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func waitForDone(ch chan sessionEndedMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForRecord(m.records), waitForDone(m.done))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case recordMsg:
		m.lines = append(m.lines, msg.line)
		if len(m.lines) > 500 {
			m.lines = m.lines[len(m.lines)-500:]
		}
		m.log.SetContent(strings.Join(m.lines, "\n"))
		m.log.GotoBottom()
		return m, waitForRecord(m.records)
	case sessionEndedMsg:
		m.lastErr = msg.err
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		if m.lastErr != nil {
			return fmt.Sprintf("session ended: %v\n", m.lastErr)
		}
		return "bye\n"
	}
	header := headerStyle.Render("Radiation Alert monitor")
	footer := footerStyle.Render(fmt.Sprintf("%d records  |  q to quit", len(m.lines)))
	return lipgloss.JoinVertical(lipgloss.Left, header, logViewStyle.Render(m.log.View()), footer)
}

func formatStatus(s radalert.Status) string {
	units := s.DisplayUnits()
	alarm := "n/a"
	if a, err := s.AlarmState(); err == nil {
		alarm = a.String()
	}
	return fmt.Sprintf("[%s] id=%-3d %8.2f %-8s cps=%-6d alarm=%s",
		time.Now().Format("15:04:05"), s.ID(), s.DisplayValue(), units, s.CPS(), alarm)
}

func formatQuery(q radalert.Query) string {
	return fmt.Sprintf("[%s] QUERY alarm_level=%d conversion=%d deadtime=%.4fs",
		time.Now().Format("15:04:05"), q.AlarmLevel(), q.ConversionFactor(), q.Deadtime())
}

func formatDeviceInfo(info radalert.DeviceInfo) string {
	return fmt.Sprintf("[device] manufacturer=%q model=%q serial=%q hw=%q fw=%q sw=%q",
		info.Manufacturer, info.Model, info.SerialNumber,
		info.HardwareRevision, info.FirmwareRevision, info.SoftwareRevision)
}

func runBLE(ctx context.Context, addr string, records chan recordMsg, done chan sessionEndedMsg) {
	t, err := transport.DialBLE(ctx, addr)
	if err != nil {
		done <- sessionEndedMsg{err: err}
		return
	}
	defer t.Close()

	sess := session.NewBLESession(t,
		func(s *radalert.BLEStatus) { records <- recordMsg{line: formatStatus(s)} },
		func(q *radalert.BLEQuery) { records <- recordMsg{line: formatQuery(q)} },
	)
	go reportDeviceInfo(ctx, sess, records)
	done <- sessionEndedMsg{err: sess.Spin(ctx)}
}

// reportDeviceInfo polls until Spin's one-time Device Information read
// completes (or ctx ends), then emits it once.
func reportDeviceInfo(ctx context.Context, sess *session.BLESession, records chan recordMsg) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if info, ok := sess.DeviceInfo(); ok {
				records <- recordMsg{line: formatDeviceInfo(info)}
				return
			}
		}
	}
}

func runHID(ctx context.Context, records chan recordMsg, done chan sessionEndedMsg) {
	t, err := transport.OpenHID(transport.USBVendorID, transport.USBProductID)
	if err != nil {
		done <- sessionEndedMsg{err: err}
		return
	}
	defer t.Close()

	sess := session.NewHIDSession(t, t,
		func(s *radalert.HIDStatus) { records <- recordMsg{line: formatStatus(s)} },
		func(q *radalert.HIDQuery) { records <- recordMsg{line: formatQuery(q)} },
	)
	done <- sessionEndedMsg{err: sess.Spin(ctx)}
}

func main() {
	bleAddr := flag.String("ble", "", "connect over BLE to the peripheral at this address")
	useHID := flag.Bool("hid", false, "connect over USB HID")
	flag.Parse()

	if (*bleAddr == "") == *useHID {
		fmt.Fprintln(os.Stderr, "specify exactly one of -ble=<address> or -hid")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records := make(chan recordMsg, 64)
	done := make(chan sessionEndedMsg, 1)

	if *bleAddr != "" {
		go runBLE(ctx, *bleAddr, records, done)
	} else {
		go runHID(ctx, records, done)
	}

	p := tea.NewProgram(newModel(records, done))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "monitor: %v\n", err)
		os.Exit(1)
	}
}
