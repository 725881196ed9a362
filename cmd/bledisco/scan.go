package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/hedzr/go-ringbuf/v2/mpmc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/bledisco/internal/discovery"
	"github.com/srg/bledisco/internal/groutine"
	"github.com/srg/bledisco/internal/script"
	"github.com/srg/bledisco/pkg/config"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BLE devices",
	Long: `Scan for and display Bluetooth Low Energy devices in the vicinity.

Each device is printed once, as soon as it is discovered. Devices that advertise
no name are briefly connected to read their GAP device name first. When the scan
ends the devices are listed by signal strength, strongest first.`,
	Example: `  bledisco scan --duration 30s
  bledisco scan --watch --services 180d
  bledisco scan --script strong.lua --format json`,
	RunE: runScan,
}

var (
	scanDuration       time.Duration
	scanFormat         string
	scanServices       []string
	scanAllowList      []string
	scanBlockList      []string
	scanNoResolve      bool
	scanResolveTimeout time.Duration
	scanWatch          bool
	scanRefresh        time.Duration
	scanScript         string
)

// watchFeedSize bounds the events buffered between watch-mode refreshes; older events
// are overwritten.
const watchFeedSize = 1024

func init() {
	registerScanFlags()
}

func registerScanFlags() {
	f := scanCmd.Flags()
	f.DurationVarP(&scanDuration, "duration", "d", 10*time.Second, "Scan duration (0 scans until interrupted)")
	f.StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
	f.StringSliceVarP(&scanServices, "services", "s", nil, "Only show devices advertising one of these service UUIDs")
	f.StringSliceVar(&scanAllowList, "allow", nil, "Only show devices with these addresses")
	f.StringSliceVar(&scanBlockList, "block", nil, "Hide devices with these addresses")
	f.BoolVar(&scanNoResolve, "no-resolve", false, "Do not connect to unnamed devices to read their names")
	f.DurationVar(&scanResolveTimeout, "resolve-timeout", discovery.DefaultResolveTimeout, "Time allowed to read one device name")
	f.BoolVarP(&scanWatch, "watch", "w", false, "Continuously scan and refresh the device table")
	f.DurationVar(&scanRefresh, "refresh", time.Second, "Table refresh interval in watch mode")
	f.StringVar(&scanScript, "script", "", "Lua script defining accept(p) to filter devices")
}

// applyScanFlags lets explicitly set flags override the config file.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("duration") {
		cfg.ScanDuration = scanDuration
	} else if scanWatch {
		// Watch mode scans until interrupted unless a duration is given
		cfg.ScanDuration = 0
	}
	if flags.Changed("format") {
		cfg.OutputFormat = scanFormat
	}
	if flags.Changed("no-resolve") {
		cfg.ResolveNames = !scanNoResolve
	}
	if flags.Changed("resolve-timeout") {
		cfg.ResolveTimeout = scanResolveTimeout
	}
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyScanFlags(cmd, cfg)

	validFormats := []string{"table", "json"}
	if !slices.Contains(validFormats, cfg.OutputFormat) {
		return fmt.Errorf("invalid format '%s': must be one of %v", cfg.OutputFormat, validFormats)
	}
	if scanWatch && scanRefresh <= 0 {
		return fmt.Errorf("invalid refresh interval %s: must be positive", scanRefresh)
	}

	logger, err := configureLogger(cmd, cfg, "verbose")
	if err != nil {
		return err
	}

	var filter *script.Filter
	if scanScript != "" {
		if filter, err = script.LoadFilterFile(scanScript, logger); err != nil {
			return err
		}
		defer filter.Close()
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	radio, closeRadio, err := radioFactory(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open BLE radio: %w", err)
	}
	defer closeRadio()

	core := discovery.New(radio, logger, cfg.DiscoveryOptions())
	coreCtx, stopCore := context.WithCancel(context.Background())
	done := core.Start(coreCtx)
	defer func() {
		stopCore()
		<-done
	}()

	sub := core.Subscribe()
	defer sub.Close()

	err = core.StartScan(ctx, &discovery.ScanOptions{
		Duration:     cfg.ScanDuration,
		ServiceUUIDs: scanServices,
		AllowList:    scanAllowList,
		BlockList:    scanBlockList,
	})
	if err != nil {
		return err
	}

	out := newScanOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.OutputFormat, filter, logger)
	grace := cfg.ResolveTimeout
	if grace <= 0 {
		grace = discovery.DefaultResolveTimeout
	}
	if scanWatch {
		return runWatchMode(ctx, cmd, core, sub, out, grace)
	}

	var progress *ProgressPrinter
	if cfg.OutputFormat == "table" && isTerminal(cmd.ErrOrStderr()) {
		progress = NewProgressPrinter(cmd.ErrOrStderr(), "Scanning for BLE devices", cfg.ScanDuration)
	}
	return runSingleScan(ctx, cmd, core, sub, out, progress, grace)
}

// runSingleScan prints devices as they are discovered and the ranked table once the
// session ends or the user interrupts it. Names still being read when the session ends
// are waited for, up to grace.
func runSingleScan(ctx context.Context, cmd *cobra.Command, core *discovery.Core, sub *discovery.Subscription,
	out *scanOutput, progress *ProgressPrinter, grace time.Duration) error {
	if progress != nil {
		progress.Start()
		defer progress.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			if progress != nil {
				progress.Stop()
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted, stopping scan...")
			stopScan(core, out.logger)
			return out.table(core)

		case ev, ok := <-sub.C():
			if !ok {
				return discovery.ErrClosed
			}
			switch ev.Kind {
			case discovery.PeripheralDiscovered:
				if progress != nil {
					progress.Clear()
					progress.Found()
				}
				out.discovered(ev.Peripheral)
			case discovery.ScanStopped:
				if progress != nil {
					progress.Stop()
				}
				reportStop(cmd, ev)
				awaitResolutions(ctx, core, sub, grace, out.logger, func(ev discovery.Event) {
					if ev.Kind == discovery.PeripheralDiscovered {
						out.discovered(ev.Peripheral)
					}
				})
				return out.table(core)
			}
		}
	}
}

// runWatchMode redraws the ranked table every refresh interval until the session ends.
// Events are moved off the subscription by a feeder goroutine into an overwriting ring,
// so a slow terminal never backs up the subscription.
func runWatchMode(ctx context.Context, cmd *cobra.Command, core *discovery.Core, sub *discovery.Subscription,
	out *scanOutput, grace time.Duration) error {
	feed := mpmc.NewOverlappedRingBuffer[discovery.Event](watchFeedSize)

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	feedDone := groutine.Go(feedCtx, "scan-watch-feed", func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.C():
				if !ok {
					return
				}
				overwrites, err := feed.EnqueueM(ev)
				if err != nil {
					out.logger.WithError(err).Warn("Watch feed enqueue failed")
					continue
				}
				if overwrites > 0 {
					out.logger.WithField("overwritten", overwrites).Debug("Watch feed overflow")
				}
			}
		}
	})

	// Frames drawn while late names arrive keep the stop reason on screen.
	var lastStop *discovery.Event
	redraw := func() (bool, error) {
		fresh, stopped := drainFeed(feed, out.logger)
		if stopped != nil {
			lastStop = stopped
		}
		out.clearScreen()
		if err := out.table(core); err != nil {
			return stopped != nil, err
		}
		out.fresh(fresh)
		if lastStop != nil {
			reportStop(cmd, *lastStop)
		}
		return stopped != nil, nil
	}

	// finish stops the feeder, moves what it left on the subscription into the ring and
	// draws the last frame.
	finish := func() error {
		stopFeed()
		<-feedDone
		drainSubscription(sub, func(ev discovery.Event) {
			if _, err := feed.EnqueueM(ev); err != nil {
				out.logger.WithError(err).Warn("Watch feed enqueue failed")
			}
		})
		_, err := redraw()
		return err
	}

	ticker := time.NewTicker(scanRefresh)
	defer ticker.Stop()

	var stoppedAt time.Time
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted, stopping scan...")
			stopScan(core, out.logger)
			stopFeed()
			<-feedDone
			_, err := redraw()
			return err

		case <-feedDone:
			_, err := redraw()
			return err

		case <-ticker.C:
			if !stoppedAt.IsZero() {
				if resolutionsSettled(core, out.logger) || time.Since(stoppedAt) >= grace {
					return finish()
				}
			}
			stopped, err := redraw()
			if err != nil {
				return err
			}
			if stopped {
				stoppedAt = time.Now()
			}
		}
	}
}

// resolutionPollInterval is how often the CLI checks for names still being read after the
// session ended.
const resolutionPollInterval = 50 * time.Millisecond

// awaitResolutions hands events to onEvent until every name resolution in flight has been
// reported, grace elapses or ctx ends.
func awaitResolutions(ctx context.Context, core *discovery.Core, sub *discovery.Subscription, grace time.Duration,
	logger *logrus.Logger, onEvent func(discovery.Event)) {
	deadline := time.NewTimer(grace)
	defer deadline.Stop()
	poll := time.NewTicker(resolutionPollInterval)
	defer poll.Stop()

	for {
		// The core publishes a result before it stops counting it, so once the count
		// reaches zero every owed event is already queued on sub.
		if resolutionsSettled(core, logger) {
			drainSubscription(sub, onEvent)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			logger.WithField("grace", grace).Debug("Gave up waiting for name resolutions")
			drainSubscription(sub, onEvent)
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			onEvent(ev)
		case <-poll.C:
		}
	}
}

// resolutionsSettled reports whether no name resolution is left unreported. A core that
// cannot answer counts as settled.
func resolutionsSettled(core *discovery.Core, logger *logrus.Logger) bool {
	ctx, cancel := context.WithTimeout(context.Background(), peripheralsTimeout)
	defer cancel()
	n, err := core.Resolving(ctx)
	if err != nil {
		logger.WithError(err).Debug("Failed to count pending name resolutions")
		return true
	}
	return n == 0
}

// drainSubscription passes every event already queued on sub to onEvent without waiting.
func drainSubscription(sub *discovery.Subscription, onEvent func(discovery.Event)) {
	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			onEvent(ev)
		default:
			return
		}
	}
}

// drainFeed empties the ring, returning discovered peripherals in order and the
// ScanStopped event if one was seen.
func drainFeed(feed mpmc.RichOverlappedRingBuffer[discovery.Event], logger *logrus.Logger) ([]discovery.Peripheral, *discovery.Event) {
	var fresh []discovery.Peripheral
	var stopped *discovery.Event
	for !feed.IsEmpty() {
		ev, err := feed.Dequeue()
		if err != nil {
			logger.WithError(err).Debug("Watch feed dequeue failed")
			break
		}
		switch ev.Kind {
		case discovery.PeripheralDiscovered:
			fresh = append(fresh, ev.Peripheral)
		case discovery.ScanStopped:
			stopped = &ev
		}
	}
	return fresh, stopped
}

// stopScan ends the session on interrupt. The session may already have ended on its own.
func stopScan(core *discovery.Core, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := core.StopScan(ctx); err != nil && !errors.Is(err, discovery.ErrNoScanInProgress) {
		logger.WithError(err).Warn("Failed to stop scan")
	}
}

// reportStop explains sessions that ended for a reason other than the user or the
// configured duration.
func reportStop(cmd *cobra.Command, ev discovery.Event) {
	switch ev.Reason {
	case discovery.StopRequested, discovery.StopDuration, "":
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Scan stopped: %s\n", ev.Reason)
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && isTerminalFile(f)
}
