package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/srg/bledisco/internal/discovery"
	"github.com/srg/bledisco/internal/script"
)

const (
	maxNameWidth       = 24
	clearScreenSeq     = "\033[H\033[2J"
	peripheralsTimeout = 5 * time.Second
)

// scanOutput renders scan results in the selected format, applying the optional Lua
// filter to everything it prints.
type scanOutput struct {
	w      io.Writer
	errW   io.Writer
	format string
	tty    bool
	filter *script.Filter
	logger *logrus.Logger

	nameColor *color.Color
	addrColor *color.Color
	strong    *color.Color
	medium    *color.Color
	weak      *color.Color
}

func newScanOutput(w, errW io.Writer, format string, filter *script.Filter, logger *logrus.Logger) *scanOutput {
	o := &scanOutput{
		w:         w,
		errW:      errW,
		format:    format,
		tty:       isTerminal(w),
		filter:    filter,
		logger:    logger,
		nameColor: color.New(color.FgCyan, color.Bold),
		addrColor: color.New(color.FgHiBlack),
		strong:    color.New(color.FgGreen),
		medium:    color.New(color.FgYellow),
		weak:      color.New(color.FgRed),
	}
	for _, c := range []*color.Color{o.nameColor, o.addrColor, o.strong, o.medium, o.weak} {
		if o.tty && os.Getenv("NO_COLOR") == "" {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return o
}

// keep reports whether the Lua filter accepts p. Filter errors reject the peripheral.
func (o *scanOutput) keep(p discovery.Peripheral) bool {
	if o.filter == nil {
		return true
	}
	ok, err := o.filter.Accept(p)
	if err != nil {
		o.logger.WithError(err).WithField("peripheral", p.ID).Warn("Filter script failed")
		return false
	}
	return ok
}

// discovered prints one line per discovery event in table mode.
func (o *scanOutput) discovered(p discovery.Peripheral) {
	if o.format != "table" || !o.keep(p) {
		return
	}
	fmt.Fprintf(o.w, "+ %s %s %s\n",
		o.nameColor.Sprint(p.DisplayName()),
		o.addrColor.Sprintf("(%s)", p.ID),
		o.rssiColor(p.RSSI).Sprintf("%d dBm", p.RSSI))
}

// fresh lists peripherals discovered since the previous watch-mode refresh.
func (o *scanOutput) fresh(ps []discovery.Peripheral) {
	if o.format != "table" {
		return
	}
	for _, p := range ps {
		o.discovered(p)
	}
}

// table prints the ranked peripheral list.
func (o *scanOutput) table(core *discovery.Core) error {
	ctx, cancel := context.WithTimeout(context.Background(), peripheralsTimeout)
	defer cancel()

	ranked, err := core.Peripherals(ctx)
	if err != nil {
		return fmt.Errorf("failed to list peripherals: %w", err)
	}

	shown := make([]discovery.Peripheral, 0, len(ranked))
	for _, p := range ranked {
		if o.keep(p) {
			shown = append(shown, p)
		}
	}

	if o.format == "json" {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(shown)
	}

	if len(shown) == 0 {
		fmt.Fprintln(o.w, "No devices found.")
	} else {
		fmt.Fprintf(o.w, "\nFound %d device(s):\n\n", len(shown))
		// Padding is computed on raw bytes, so rows stay uncolored
		tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tADDRESS\tRSSI")
		for _, p := range shown {
			fmt.Fprintf(tw, "%s\t%s\t%d dBm\n", truncate(p.DisplayName(), maxNameWidth), p.ID, p.RSSI)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if o.filter != nil {
		if out := o.filter.Output(); out != "" {
			fmt.Fprint(o.errW, out)
		}
	}
	return nil
}

// clearScreen wipes the terminal before a watch-mode redraw. Pipes get appended frames.
func (o *scanOutput) clearScreen() {
	if o.tty {
		fmt.Fprint(o.w, clearScreenSeq)
	}
}

func (o *scanOutput) rssiColor(rssi int) *color.Color {
	switch {
	case rssi >= -60:
		return o.strong
	case rssi >= -80:
		return o.medium
	default:
		return o.weak
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

func isTerminalFile(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
