package dftl

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// CheckInvariants walks the cache's entries and queues and aggregates
// every violation it finds into a single error, rather than stopping at the
// first one. The dependency tracker is not inspected. It is not on the hot path — tests and offline tooling call it
// to get a complete diagnostic in one pass.
func (c *Coordinator) CheckInvariants() error {
	var result *multierror.Error

	fixedCount := 0
	for la, e := range c.cache.entries {
		if e.la != la {
			result = multierror.Append(result, errInvariantf("entry keyed at la %d reports la %d", la, e.la))
		}
		switch e.state {
		case stateFixed:
			fixedCount++
			if e.linked {
				result = multierror.Append(result, errInvariantf("la %d is fixed but still linked into a queue", la))
			}
		case stateDirty:
			if !e.linked {
				result = multierror.Append(result, errInvariantf("la %d is dirty but unlinked from the dirty queue", la))
			}
		case stateClean:
			if !e.linked {
				result = multierror.Append(result, errInvariantf("la %d is clean but unlinked from the clean queue", la))
			}
		}
	}

	counted := c.cache.dirty.size + c.cache.clean.size + fixedCount
	if counted != len(c.cache.entries) {
		result = multierror.Append(result, errInvariantf(
			"cache entry count %d does not match dirty(%d)+clean(%d)+fixed(%d)",
			len(c.cache.entries), c.cache.dirty.size, c.cache.clean.size, fixedCount))
	}

	return result.ErrorOrNil()
}

func errInvariantf(format string, args ...any) error {
	return &invariantError{msg: fmt.Sprintf(format, args...)}
}

type invariantError struct{ msg string }

func (e *invariantError) Error() string { return "dftl: invariant violation: " + e.msg }
