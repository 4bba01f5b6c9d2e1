// Command dftlsim drives a synthetic I/O trace through the DFTL coordinator
// and prints the user-write count and per-translation-page hit counts. It
// is a demo harness, not part
// of the coordinator's own contract.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dftlsim/dftl/internal/dftl"
	"github.com/dftlsim/dftl/internal/dftl/event"
	"github.com/dftlsim/dftl/internal/dftl/sim"
	"github.com/dftlsim/dftl/internal/dftl/stats"
)

// Workload is the demo binary's own YAML configuration — distinct from
// dftl.Config, which stays a plain struct loaded by whatever embeds the
// coordinator.
type Workload struct {
	AddressablePages          int64       `yaml:"addressable_pages"`
	EntriesPerTranslationPage int64       `yaml:"entries_per_translation_page"`
	CacheThreshold            int         `yaml:"cache_threshold"`
	SeparateMappingPages      bool        `yaml:"separate_mapping_pages"`
	BlockSize                 int         `yaml:"block_size"`
	Trace                     []TraceStep `yaml:"trace"`
}

// TraceStep is one synthetic I/O in the workload.
type TraceStep struct {
	Op string `yaml:"op"` // "read" or "write"
	LA int64  `yaml:"la"`
}

func defaultWorkload() Workload {
	w := Workload{
		AddressablePages:          16,
		EntriesPerTranslationPage: 4,
		CacheThreshold:            3,
		SeparateMappingPages:      true,
		BlockSize:                 4,
	}
	for la := int64(0); la < 5; la++ {
		w.Trace = append(w.Trace, TraceStep{Op: "write", LA: la})
	}
	w.Trace = append(w.Trace,
		TraceStep{Op: "read", LA: 1},
		TraceStep{Op: "read", LA: 2},
		TraceStep{Op: "read", LA: 9},
	)
	return w
}

func loadWorkload(path string) (Workload, error) {
	if path == "" {
		return defaultWorkload(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Workload{}, fmt.Errorf("dftlsim: reading workload file: %w", err)
	}
	var w Workload
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return Workload{}, fmt.Errorf("dftlsim: parsing workload file: %w", err)
	}
	return w, nil
}

func main() {
	configPath := flag.String("config", "", "path to a YAML workload file; uses a built-in demo trace if empty")
	flag.Parse()

	workload, err := loadWorkload(*configPath)
	if err != nil {
		log.Fatalf("dftlsim: %v", err)
	}

	cfg := dftl.Config{
		AddressablePages:          workload.AddressablePages,
		EntriesPerTranslationPage: workload.EntriesPerTranslationPage,
		CacheThreshold:            workload.CacheThreshold,
		SeparateMappingPages:      workload.SeparateMappingPages,
	}

	pageFTL := sim.NewPageFTL()
	wheel := sim.NewTimeWheel()
	blocks := sim.NewBlockManager(workload.BlockSize)
	sink := stats.New()

	coord, err := dftl.New(cfg, wheel, pageFTL, blocks, sink)
	if err != nil {
		log.Fatalf("dftlsim: %v", err)
	}

	arrival := 0.0
	for _, step := range workload.Trace {
		arrival++
		now := arrival
		if queued := wheel.Now(); queued > now {
			now = queued
		}
		switch step.Op {
		case "read":
			coord.Read(event.New(event.Read, step.LA, 1, now))
		case "write":
			coord.Write(event.New(event.Write, step.LA, 1, now))
		default:
			log.Fatalf("dftlsim: unknown trace op %q", step.Op)
		}
		drain(coord, pageFTL, blocks, wheel)
	}

	snap := sink.Snapshot()
	fmt.Printf("user writes: %d\n", snap.TotalUserWrites)
	fmt.Println("hits by translation page:")
	for tpid, hits := range snap.HitsByTPID {
		fmt.Printf("  tpid %d: %d\n", tpid, hits)
	}
}

// drain pops every event the coordinator has scheduled and resolves it
// immediately against the reference collaborators, simulating an
// always-succeeding flash device with zero latency.
func drain(coord *dftl.Coordinator, pageFTL *sim.PageFTL, blocks *sim.BlockManager, wheel *sim.TimeWheel) {
	for {
		e, ok := wheel.Pop()
		if !ok {
			return
		}
		if e.Noop {
			continue
		}
		if e.IsMappingOp {
			switch e.EventKind() {
			case event.Read:
				coord.RegisterReadCompletion(e, event.StatusSuccess)
			case event.Write:
				e.Address = pageFTL.Allocate()
				blocks.ConsumeTag(e)
				coord.RegisterWriteCompletion(e, event.StatusSuccess)
			}
			continue
		}
		switch e.EventKind() {
		case event.Read:
			coord.SetReadAddress(e)
			coord.RegisterReadCompletion(e, event.StatusSuccess)
		case event.Write:
			coord.SetReplaceAddress(e)
			coord.RegisterWriteCompletion(e, event.StatusSuccess)
		}
	}
}
