package app

import (
	"testing"
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/dagconfig"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/config"
)

func testConfig(t *testing.T, dbType string) *config.Config {
	params := dagconfig.SimnetParams
	flags := config.DefaultFlags()
	flags.DBType = dbType
	flags.DBCacheSizeMiB = 8
	flags.ExpirySweepInterval = time.Millisecond
	return &config.Config{
		Flags:           flags,
		DataDir:         t.TempDir(),
		ActiveNetParams: &params,
	}
}

func TestRunStartsAndStops(t *testing.T) {
	for _, dbType := range []string{config.DBTypePebble, config.DBTypeLevelDB} {
		cfg := testConfig(t, dbType)
		interrupt := make(chan struct{})
		close(interrupt)

		// Running twice over the same data directory reloads what the first
		// run persisted
		for i := 0; i < 2; i++ {
			err := run(cfg, interrupt)
			if err != nil {
				t.Fatalf("%s: run #%d: %+v", dbType, i, err)
			}
		}
	}
}

func TestLockDataDirIsExclusive(t *testing.T) {
	dataDir := t.TempDir()
	fileLock, err := lockDataDir(dataDir)
	if err != nil {
		t.Fatalf("lockDataDir: %+v", err)
	}
	defer fileLock.Unlock()

	_, err = lockDataDir(dataDir)
	if err == nil {
		t.Fatalf("expected the second lock of %s to fail", dataDir)
	}
}
