package app

import (
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/transactionvalidator"
	"github.com/Hoosat-Oy/treegraphd/domain/miningmanager/mempool"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/config"
	infrastructuredatabase "github.com/Hoosat-Oy/treegraphd/infrastructure/db/database"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database/ldb"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database/pebble"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

const lockFilename = ".lock"

// StartApp loads the configuration, starts treegraphd and blocks until the
// process is interrupted
func StartApp() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	logger.BackendLog.SetCallsite(cfg.Callsite)
	logger.InitLog(cfg.LogFile, cfg.ErrLogFile)
	defer logger.BackendLog.Close()

	err = logger.ParseAndSetLogLevels(cfg.LogLevel)
	if err != nil {
		log.Errorf("Failed parsing the log level: %+v", err)
		return err
	}

	err = run(cfg, interruptListener())
	if err != nil {
		log.Criticalf("%+v", err)
		return err
	}
	return nil
}

func run(cfg *config.Config, interrupt <-chan struct{}) error {
	log.Infof("Starting treegraphd on %s", cfg.ActiveNetParams.Name)

	if cfg.Profile != "" {
		startProfiler(cfg.Profile)
	}

	fileLock, err := lockDataDir(cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		err := fileLock.Unlock()
		if err != nil {
			log.Errorf("Failed releasing the lock on %s: %+v", cfg.DataDir, err)
		}
	}()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := db.Close()
		if err != nil {
			log.Errorf("Failed closing the database: %+v", err)
		}
	}()

	params := cfg.ActiveNetParams
	transactionPool, err := mempool.New(mempool.DefaultConfig(), transactionvalidator.New(params.BlockGasLimit))
	if err != nil {
		return err
	}
	domainConsensus, err := consensus.NewFactory().NewConsensus(params, db, transactionPool)
	if err != nil {
		return errors.Wrap(err, "failed loading the consensus")
	}
	defer domainConsensus.Close()
	log.Infof("Pivot tip is %s", domainConsensus.PivotTip())

	sweeper := newExpirySweeper(domainConsensus, params.ArenaExpiry, cfg.ExpirySweepInterval)
	sweeper.start()
	defer sweeper.stop()

	<-interrupt
	log.Infof("Shutting down treegraphd")
	return nil
}

func lockDataDir(dataDir string) (*flock.Flock, error) {
	err := os.MkdirAll(dataDir, 0700)
	if err != nil {
		return nil, errors.Wrapf(err, "failed creating data directory %s", dataDir)
	}
	fileLock := flock.New(filepath.Join(dataDir, lockFilename))
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "failed locking %s", dataDir)
	}
	if !locked {
		return nil, errors.Errorf("%s is in use by another process", dataDir)
	}
	return fileLock, nil
}

func openDB(cfg *config.Config) (infrastructuredatabase.Database, error) {
	dbPath := filepath.Join(cfg.DataDir, cfg.DBType)
	log.Infof("Loading the %s database from '%s'", cfg.DBType, dbPath)

	if cfg.DBType == config.DBTypeLevelDB {
		db, err := ldb.NewLevelDB(dbPath, cfg.DBTuning())
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	db, err := pebble.NewPebbleDB(dbPath, cfg.DBTuning())
	if err != nil {
		return nil, err
	}
	return db, nil
}

func startProfiler(port string) {
	spawn(func() {
		listenAddr := net.JoinHostPort("127.0.0.1", port)
		log.Infof("Profile server listening on %s", listenAddr)
		profileRedirect := http.RedirectHandler("/debug/pprof", http.StatusSeeOther)
		http.Handle("/", profileRedirect)
		log.Errorf("%s", http.ListenAndServe(listenAddr, nil))
	})
}

// interruptListener returns a channel that is closed on the first SIGINT or
// SIGTERM
func interruptListener() <-chan struct{} {
	interrupt := make(chan struct{})
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	spawn(func() {
		received := <-signals
		log.Infof("Received signal (%s). Shutting down...", received)
		close(interrupt)
	})
	return interrupt
}
