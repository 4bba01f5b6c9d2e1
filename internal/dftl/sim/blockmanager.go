package sim

import "github.com/dftlsim/dftl/internal/dftl/event"

// BlockManager is a reference block manager: it counts pages consumed per
// tag and, once a pool fills a block, reports that the block is ready for
// garbage collection. It does not pick victim pages within the block or
// perform the relocation itself — that is PageFTL.Relocate, driven by
// whatever issues GC events. The demo binary in cmd/dftlsim issues none.
type BlockManager struct {
	blockSize int
	fill      map[int]int
	readyTags []int
}

// NewBlockManager creates a block manager where each tag's pool holds
// blockSize pages before a block is considered full.
func NewBlockManager(blockSize int) *BlockManager {
	if blockSize <= 0 {
		blockSize = 1
	}
	return &BlockManager{blockSize: blockSize, fill: make(map[int]int)}
}

// ConsumeTag implements dftl.BlockManager.
func (b *BlockManager) ConsumeTag(e *event.Event) {
	b.fill[e.Tag]++
	if b.fill[e.Tag] >= b.blockSize {
		b.readyTags = append(b.readyTags, e.Tag)
		b.fill[e.Tag] = 0
	}
}

// NextReadyTag returns a tag whose pool has filled a block since the last
// call, or (0, false) if none is pending. The caller decides what garbage
// collection against that tag's pool looks like.
func (b *BlockManager) NextReadyTag() (int, bool) {
	if len(b.readyTags) == 0 {
		return 0, false
	}
	tag := b.readyTags[0]
	b.readyTags = b.readyTags[1:]
	return tag, true
}
