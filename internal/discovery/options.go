package discovery

import (
	"fmt"
	"time"

	"github.com/srg/bledisco/internal/device"
)

// Options configures a Core.
type Options struct {
	// ResolveNames enables the connect-and-read procedure for unnamed connectable peripherals.
	ResolveNames bool
	// ResolveTimeout bounds a single resolution. Zero disables the bound.
	ResolveTimeout time.Duration
	// EventBuffer is the per-subscriber queue length.
	EventBuffer int
	// MailboxSize is the capacity of the core's inbound queue.
	MailboxSize int
}

const (
	DefaultResolveTimeout = 10 * time.Second
	DefaultMailboxSize    = 256
)

// DefaultOptions returns default core options
func DefaultOptions() *Options {
	return &Options{
		ResolveNames:   true,
		ResolveTimeout: DefaultResolveTimeout,
		EventBuffer:    DefaultSubscriptionBuffer,
		MailboxSize:    DefaultMailboxSize,
	}
}

// ScanOptions configures one scan session.
type ScanOptions struct {
	// Duration stops the session automatically. Zero scans until StopScan.
	Duration     time.Duration
	ServiceUUIDs []string
	AllowList    []string
	BlockList    []string
}

// DefaultScanOptions returns options for an unbounded, unfiltered session.
func DefaultScanOptions() *ScanOptions {
	return &ScanOptions{}
}

// filter applies allow/block/service filters to advertisements.
type filter struct {
	allow    map[string]struct{}
	block    map[string]struct{}
	services []string
}

func newFilter(opts *ScanOptions) (filter, error) {
	var f filter
	if len(opts.ServiceUUIDs) > 0 {
		services, err := device.ValidateUUID(opts.ServiceUUIDs...)
		if err != nil {
			return filter{}, fmt.Errorf("invalid service filter: %w", err)
		}
		f.services = services
	}

	if len(opts.AllowList) > 0 {
		f.allow = make(map[string]struct{}, len(opts.AllowList))
		for _, id := range opts.AllowList {
			f.allow[id] = struct{}{}
		}
	}
	if len(opts.BlockList) > 0 {
		f.block = make(map[string]struct{}, len(opts.BlockList))
		for _, id := range opts.BlockList {
			f.block[id] = struct{}{}
		}
	}
	return f, nil
}

// include applies block, then allow, then service filters
func (f filter) include(id string, adv device.Advertisement) bool {
	if _, blocked := f.block[id]; blocked {
		return false
	}
	if f.allow != nil {
		if _, allowed := f.allow[id]; !allowed {
			return false
		}
	}

	if len(f.services) == 0 {
		return true
	}
	if adv == nil {
		return false
	}
	for _, advertised := range adv.Services() {
		advertised = device.NormalizeUUID(advertised)
		for _, required := range f.services {
			if advertised == required {
				return true
			}
		}
	}
	return false
}
