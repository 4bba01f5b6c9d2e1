// Package dftl implements the Demand-based Flash Translation Layer: the
// cached mapping table, the global translation directory, the dependency
// tracker, and the coordinator protocol that ties them together.
package dftl

import (
	"fmt"

	"github.com/dftlsim/dftl/internal/dftl/dftlerr"
	"github.com/dftlsim/dftl/internal/dftl/event"
)

// Coordinator implements the DFTL protocol of spec §4.D. It owns the
// cache, GTD, and dependency tracker exclusively; nothing outside this
// package mutates them. It is not safe for concurrent use — the
// simulator's event loop is expected to call it from a single goroutine
// (spec §5).
type Coordinator struct {
	cfg   Config
	cache *Cache
	gtd   *GTD
	deps  *DepTracker

	sched   Scheduler
	dataFTL DataFTL
	bm      BlockManager
	stats   StatsSink
}

// New builds a Coordinator. It validates that the reserved meta-LA range
// implied by cfg does not swallow the entire addressable space.
func New(cfg Config, sched Scheduler, dataFTL DataFTL, bm BlockManager, stats StatsSink) (*Coordinator, error) {
	if cfg.AddressablePages <= 0 {
		return nil, fmt.Errorf("dftl: AddressablePages must be positive, got %d", cfg.AddressablePages)
	}
	if cfg.EntriesPerTranslationPage <= 0 {
		return nil, fmt.Errorf("dftl: EntriesPerTranslationPage must be positive, got %d", cfg.EntriesPerTranslationPage)
	}
	if event.ReservedRangeStart(cfg.AddressablePages, cfg.EntriesPerTranslationPage) < 0 {
		return nil, fmt.Errorf("dftl: reserved meta-LA range exceeds AddressablePages=%d for E=%d",
			cfg.AddressablePages, cfg.EntriesPerTranslationPage)
	}
	return &Coordinator{
		cfg:     cfg,
		cache:   NewCache(),
		gtd:     NewGTD(cfg.AddressablePages, cfg.EntriesPerTranslationPage),
		deps:    NewDepTracker(),
		sched:   sched,
		dataFTL: dataFTL,
		bm:      bm,
		stats:   stats,
	}, nil
}

// Read implements the user-read entrypoint of spec §4.D.1.
func (c *Coordinator) Read(e *event.Event) {
	tpid := event.TPIDFromLA(e.LA, c.cfg.EntriesPerTranslationPage)

	if c.cache.RegisterReadArrival(e.LA) {
		c.stats.RecordHit(tpid)
		c.sched.Schedule(e)
		return
	}

	if _, mapped := c.gtd.Lookup(tpid); !mapped {
		e.Noop = true
		c.sched.Schedule(e)
		return
	}

	if c.deps.IsInflight(tpid) {
		c.deps.Attach(tpid, e)
		return
	}

	c.createMappingRead(tpid, e.CurrentTime, e)
}

// Write implements the user-write entrypoint of spec §4.D.2. Writes never
// block on translation fetches; the cache entry is installed dirty
// immediately and reconciled with flash lazily, at eviction.
func (c *Coordinator) Write(e *event.Event) {
	if c.cfg.SeparateMappingPages {
		e.Tag = 0
	}
	c.cache.RegisterWriteArrival(e.LA)
	c.stats.RecordUserWrite()
	if c.bm != nil {
		c.bm.ConsumeTag(e)
	}
	c.sched.Schedule(e)
}

// Trim is not supported unless Config.SupportTrim opts in (spec §7, §9
// Open Question). When enabled, it eagerly invalidates the CMT entry for
// e.LA; the GTD is left untouched since its translation page may still
// cover other live logical addresses.
func (c *Coordinator) Trim(e *event.Event) error {
	if !c.cfg.SupportTrim {
		return dftlerr.ErrTrimUnsupported
	}
	c.cache.Invalidate(e.LA)
	c.sched.Schedule(e)
	return nil
}

// RegisterTrimCompletion forwards to the data FTL (spec §4.E).
func (c *Coordinator) RegisterTrimCompletion(e *event.Event) {
	c.dataFTL.RegisterTrimCompletion(e)
}

// RegisterReadCompletion implements spec §4.D.3.
func (c *Coordinator) RegisterReadCompletion(e *event.Event, status event.Status) {
	if !e.IsMappingOp {
		c.dataFTL.RegisterReadCompletion(e, status)
		return
	}

	tpid := event.TPIDFromMetaLA(c.cfg.AddressablePages, e.LA)
	waiters := c.deps.Complete(tpid)

	for _, f := range waiters {
		if f.IsMappingOp {
			dftlerr.Assert(f.EventKind() == event.Write,
				"promoted waiter on tpid %d must be a mapping write, got %s", tpid, f.EventKind())
			c.cache.FixTPID(tpid, c.cfg.EntriesPerTranslationPage)
			c.deps.Begin(tpid)
			c.sched.Schedule(f)
			continue
		}
		dftlerr.Assert(f.EventKind() == event.Read, "waiter on mapping read for tpid %d must be a read", tpid)
		f.Status = status
		c.cache.HandleReadDependency(f.LA)
		c.stats.RecordHit(tpid)
		c.sched.Schedule(f)
	}

	c.tryClearSpaceInMappingCache(e.CurrentTime)
}

// RegisterWriteCompletion implements spec §4.D.4.
func (c *Coordinator) RegisterWriteCompletion(e *event.Event, status event.Status) {
	if !e.IsMappingOp {
		c.dataFTL.RegisterWriteCompletion(e, status)
		c.cache.RegisterWriteCompletion(e.LA)
		c.tryClearSpaceInMappingCache(e.CurrentTime)
		return
	}

	tpid := event.TPIDFromMetaLA(c.cfg.AddressablePages, e.LA)
	first := tpid * c.cfg.EntriesPerTranslationPage

	if status == event.StatusSuccess {
		c.gtd.Install(tpid, e.Address)
		cleaned := 0
		for la := first; la < first+c.cfg.EntriesPerTranslationPage; la++ {
			if c.cache.MarkClean(la) {
				cleaned++
			}
		}
		c.stats.RecordMappingWrite(c.cache.Size(), c.cfg.CacheThreshold, cleaned)
	} else {
		for la := first; la < first+c.cfg.EntriesPerTranslationPage; la++ {
			c.cache.Unfix(la)
		}
	}

	waiters := c.deps.Complete(tpid)
	for _, f := range waiters {
		dftlerr.Assert(!f.IsMappingOp && f.EventKind() == event.Read,
			"waiter on mapping write for tpid %d must be a user read", tpid)
		f.Status = status
		c.cache.HandleReadDependency(f.LA)
		c.stats.RecordHit(tpid)
		c.sched.Schedule(f)
	}
}

// SetReadAddress implements the garbage-collection hook of spec §4.D.6.
func (c *Coordinator) SetReadAddress(e *event.Event) {
	if e.IsMappingOp {
		tpid := event.TPIDFromMetaLA(c.cfg.AddressablePages, e.LA)
		pa, _ := c.gtd.Lookup(tpid)
		e.Address = pa
		return
	}
	if e.IsGarbageCollectionOp && c.inReservedRange(e.LA) {
		tpid := event.TPIDFromMetaLA(c.cfg.AddressablePages, e.LA)
		pa, _ := c.gtd.Lookup(tpid)
		e.Address = pa
		e.IsMappingOp = true
		return
	}
	c.dataFTL.SetReadAddress(e)
}

// SetReplaceAddress implements the garbage-collection hook of spec §4.D.6,
// symmetric with SetReadAddress, additionally applying tag segregation
// when a GC event is promoted to a mapping op.
func (c *Coordinator) SetReplaceAddress(e *event.Event) {
	if e.IsMappingOp {
		tpid := event.TPIDFromMetaLA(c.cfg.AddressablePages, e.LA)
		pa, _ := c.gtd.Lookup(tpid)
		e.ReplaceAddress = pa
		if c.cfg.SeparateMappingPages {
			e.Tag = c.cfg.MappingTag()
		}
		return
	}
	if e.IsGarbageCollectionOp && c.inReservedRange(e.LA) {
		tpid := event.TPIDFromMetaLA(c.cfg.AddressablePages, e.LA)
		pa, _ := c.gtd.Lookup(tpid)
		e.ReplaceAddress = pa
		e.IsMappingOp = true
		if c.cfg.SeparateMappingPages {
			e.Tag = c.cfg.MappingTag()
		}
		return
	}
	c.dataFTL.SetReplaceAddress(e)
}

// inReservedRange reports whether la falls in the high range reserved for
// mapping I/O: la >= N - |GTD|.
func (c *Coordinator) inReservedRange(la int64) bool {
	return la >= c.cfg.AddressablePages-int64(c.gtd.Size())
}

// createMappingRead issues a mapping read for tpid, attaching dependant
// (a user read, or a mapping write waiting on the read to fill the
// translation page first) to its wait queue.
func (c *Coordinator) createMappingRead(tpid int64, now float64, dependant *event.Event) {
	metaLA := event.MetaLA(c.cfg.AddressablePages, tpid)
	me := event.NewMapping(event.Read, metaLA, now)
	pa, _ := c.gtd.Lookup(tpid)
	me.Address = pa

	c.deps.Begin(tpid)
	c.deps.Attach(tpid, dependant)
	c.sched.Schedule(me)
}

// tryClearSpaceInMappingCache implements spec §4.D.5.
func (c *Coordinator) tryClearSpaceInMappingCache(now float64) {
	c.cache.ClearCleanEntries(c.cfg.CacheThreshold)
	if c.cache.Size() <= c.cfg.CacheThreshold {
		return
	}

	victim, ok := c.cache.ChooseDirtyVictim()
	if !ok {
		return
	}

	tpid := event.TPIDFromLA(victim, c.cfg.EntriesPerTranslationPage)
	if c.deps.IsInflight(tpid) {
		c.cache.RequeueDirty(victim)
		return
	}

	metaLA := event.MetaLA(c.cfg.AddressablePages, tpid)
	mw := event.NewMapping(event.Write, metaLA, now)
	if c.cfg.SeparateMappingPages {
		mw.Tag = c.cfg.MappingTag()
	}

	_, mapped := c.gtd.Lookup(tpid)
	if !mapped || c.cache.AllResident(tpid, c.cfg.EntriesPerTranslationPage) {
		c.cache.FixTPID(tpid, c.cfg.EntriesPerTranslationPage)
		c.deps.Begin(tpid)
		c.sched.Schedule(mw)
		return
	}

	// A translation page exists on flash but not every entry covering it
	// is resident: read it first, then the write rides along as the
	// read's dependant and gets fixed + scheduled on its completion.
	c.createMappingRead(tpid, now, mw)
}
