package pebble

import (
	"fmt"
	"time"

	"github.com/cockroachdb/pebble/v2"
)

var _ pebble.Logger = eventLogger{}

// eventLogger routes pebble's own messages into the PBLE subsystem
type eventLogger struct{}

func (eventLogger) Infof(format string, args ...interface{}) {
	log.Debugf("pebble: %s", fmt.Sprintf(format, args...))
}

func (eventLogger) Errorf(format string, args ...interface{}) {
	log.Errorf("pebble: %s", fmt.Sprintf(format, args...))
}

// Fatalf must not return.
func (eventLogger) Fatalf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Criticalf("pebble: %s", message)
	panic(message)
}

// slowEventListener logs background errors, write stalls, slow disks, and
// the flushes and compactions that failed or ran for at least threshold
func slowEventListener(threshold time.Duration) *pebble.EventListener {
	return &pebble.EventListener{
		BackgroundError: func(err error) {
			log.Errorf("Background error: %+v", err)
		},
		WriteStallBegin: func(info pebble.WriteStallBeginInfo) {
			log.Warnf("Writes stalled: %s", info.Reason)
		},
		WriteStallEnd: func() {
			log.Infof("Writes resumed")
		},
		DiskSlow: func(info pebble.DiskSlowInfo) {
			log.Warnf("Slow disk %s of %s took %s", info.OpType, info.Path, info.Duration)
		},
		FlushEnd: func(info pebble.FlushInfo) {
			logJob("Flush", info.JobID, info.Reason, info.TotalDuration, info.Err, threshold)
		},
		CompactionEnd: func(info pebble.CompactionInfo) {
			logJob("Compaction", info.JobID, info.Reason, info.TotalDuration, info.Err, threshold)
		},
	}
}

func logJob(kind string, jobID int, reason string, duration time.Duration, err error, threshold time.Duration) {
	if err != nil {
		log.Errorf("%s job %d (%s) failed after %s: %+v", kind, jobID, reason, duration, err)
		return
	}
	if duration >= threshold {
		log.Infof("%s job %d (%s) took %s", kind, jobID, reason, duration)
	}
}
