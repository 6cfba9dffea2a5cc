package blocklogger

import (
	"sync"
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

const logInterval = 10 * time.Second

var stats = struct {
	sync.Mutex
	acceptedBlocks   int64
	acceptedTxs      int64
	lastBlockLogTime time.Time
}{
	lastBlockLogTime: time.Now(),
}

// LogBlock logs the number of accepted blocks as an information message
// to show progress to the user. In order to prevent spam, it limits logging to
// one message every 10 seconds with duration and totals included.
func LogBlock(block *externalapi.DomainBlock) {
	stats.Lock()
	defer stats.Unlock()

	stats.acceptedBlocks++
	stats.acceptedTxs += int64(len(block.Transactions))

	now := time.Now()
	duration := now.Sub(stats.lastBlockLogTime)
	if duration < logInterval {
		return
	}

	// Truncate the duration to 10s of milliseconds.
	tDuration := duration.Round(10 * time.Millisecond)

	blockStr := "blocks"
	if stats.acceptedBlocks == 1 {
		blockStr = "block"
	}
	txStr := "transactions"
	if stats.acceptedTxs == 1 {
		txStr = "transaction"
	}

	log.Infof("Accepted %d %s in the last %s (%d %s, height %d, %s)",
		stats.acceptedBlocks, blockStr, tDuration, stats.acceptedTxs, txStr,
		block.Header.Height, time.UnixMilli(block.Header.TimeInMilliseconds))

	stats.acceptedBlocks = 0
	stats.acceptedTxs = 0
	stats.lastBlockLogTime = now
}
