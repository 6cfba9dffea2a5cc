package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/dagconfig"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultAppDirname          = ".treegraphd"
	defaultDataDirname         = "data"
	defaultLogDirname          = "logs"
	defaultLogFilename         = "treegraphd.log"
	defaultErrLogFilename      = "treegraphd_err.log"
	defaultLogLevel            = "info"
	defaultDBType              = DBTypePebble
	defaultExpirySweepInterval = time.Minute

	// DBTypePebble selects the pebble database driver
	DBTypePebble = "pebble"
	// DBTypeLevelDB selects the goleveldb database driver
	DBTypeLevelDB = "leveldb"
)

// Flags defines the command line options of treegraphd
type Flags struct {
	AppDir               string        `short:"b" long:"appdir" description:"Directory to store data"`
	LogDir               string        `long:"logdir" description:"Directory to log output"`
	LogLevel             string        `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogCallsite          string        `long:"logcallsite" description:"Include the file and line of each log statement {none, short, long}"`
	DBType               string        `long:"dbtype" description:"Database backend {pebble, leveldb}"`
	DBCacheSizeMiB       int           `long:"dbcache" description:"Database cache size in MiB"`
	DBWriteBufferMiB     int           `long:"dbwritebuffer" description:"Size of the database write buffer in MiB"`
	DBBloomBits          int           `long:"dbbloombits" description:"Bloom filter bits per key of database tables (0 disables bloom filters)"`
	DBNoCompression      bool          `long:"dbnocompression" description:"Store database tables uncompressed"`
	DBLogSlowEvents      time.Duration `long:"dblogslowevents" description:"Log database flushes and compactions that take at least this long (0 disables)"`
	Testnet              bool          `long:"testnet" description:"Use the test network"`
	Devnet               bool          `long:"devnet" description:"Use the development network"`
	Simnet               bool          `long:"simnet" description:"Use the simulation network"`
	PrefetchWorkers      int           `long:"prefetchworkers" description:"Number of workers that prefetch transaction data during execution (0 keeps the network default)"`
	ExecutionDefer       int           `long:"executiondefer" default:"-1" description:"Number of pivot blocks an epoch waits before execution (-1 keeps the network default)"`
	ArenaExpiry          time.Duration `long:"arenaexpiry" description:"Age after which blocks that never became graph-ready are dropped (0 keeps the network default)"`
	ExpirySweepInterval  time.Duration `long:"expirysweepinterval" description:"How often to look for expired blocks"`
	OutlierCacheCapacity int           `long:"outliercachecapacity" description:"Number of pivot blocks whose outlier sets are cached (0 keeps the network default)"`
	Profile              string        `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
}

// Config is the resolved configuration of treegraphd
type Config struct {
	*Flags
	DataDir         string
	LogFile         string
	ErrLogFile      string
	ActiveNetParams *dagconfig.Params
	Callsite        logger.Callsite
}

// DefaultFlags returns the flags treegraphd starts from before the command
// line is parsed
func DefaultFlags() *Flags {
	tuning := database.DefaultTuning()
	return &Flags{
		AppDir:              defaultAppDir(),
		LogLevel:            defaultLogLevel,
		DBType:              defaultDBType,
		DBCacheSizeMiB:      tuning.CacheSizeMiB,
		DBWriteBufferMiB:    tuning.WriteBufferMiB,
		DBBloomBits:         tuning.BloomBitsPerKey,
		DBNoCompression:     !tuning.Compression,
		DBLogSlowEvents:     tuning.SlowEventThreshold,
		ExecutionDefer:      -1,
		ExpirySweepInterval: defaultExpirySweepInterval,
	}
}

// DBTuning returns the database settings selected on the command line
func (f *Flags) DBTuning() database.Tuning {
	return database.Tuning{
		CacheSizeMiB:       f.DBCacheSizeMiB,
		WriteBufferMiB:     f.DBWriteBufferMiB,
		BloomBitsPerKey:    f.DBBloomBits,
		Compression:        !f.DBNoCompression,
		SlowEventThreshold: f.DBLogSlowEvents,
	}
}

func defaultAppDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultAppDirname
	}
	return filepath.Join(homeDir, defaultAppDirname)
}

// LoadConfig parses the command line and resolves it into a Config
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	cfgFlags := DefaultFlags()
	parser := flags.NewParser(cfgFlags, flags.HelpFlag)
	_, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
		}
		return nil, err
	}
	return resolve(cfgFlags)
}

func resolve(cfgFlags *Flags) (*Config, error) {
	params, err := cfgFlags.netParams()
	if err != nil {
		return nil, err
	}

	switch cfgFlags.DBType {
	case DBTypePebble, DBTypeLevelDB:
	default:
		return nil, errors.Errorf("unknown dbtype %q, expected one of {%s, %s}",
			cfgFlags.DBType, DBTypePebble, DBTypeLevelDB)
	}
	callsite, err := logger.CallsiteFromString(cfgFlags.LogCallsite)
	if err != nil {
		return nil, err
	}
	err = cfgFlags.DBTuning().Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid database settings")
	}
	if cfgFlags.ExpirySweepInterval <= 0 {
		return nil, errors.Errorf("expirysweepinterval must be positive, got %s", cfgFlags.ExpirySweepInterval)
	}
	if cfgFlags.ExecutionDefer < -1 {
		return nil, errors.Errorf("executiondefer must be -1 or non-negative, got %d", cfgFlags.ExecutionDefer)
	}
	if cfgFlags.PrefetchWorkers < 0 {
		return nil, errors.Errorf("prefetchworkers must be non-negative, got %d", cfgFlags.PrefetchWorkers)
	}
	if cfgFlags.OutlierCacheCapacity < 0 {
		return nil, errors.Errorf("outliercachecapacity must be non-negative, got %d", cfgFlags.OutlierCacheCapacity)
	}

	// Overrides apply to a copy so the package-level parameters stay intact
	activeParams := *params
	if cfgFlags.PrefetchWorkers > 0 {
		activeParams.PrefetchWorkers = cfgFlags.PrefetchWorkers
	}
	if cfgFlags.ExecutionDefer >= 0 {
		activeParams.ExecutionDeferDepth = uint64(cfgFlags.ExecutionDefer)
	}
	if cfgFlags.ArenaExpiry > 0 {
		activeParams.ArenaExpiry = cfgFlags.ArenaExpiry
	}
	if cfgFlags.OutlierCacheCapacity > 0 {
		activeParams.OutlierCacheCapacity = cfgFlags.OutlierCacheCapacity
	}
	err = activeParams.Validate()
	if err != nil {
		return nil, err
	}

	appDir := cleanAndExpandPath(cfgFlags.AppDir)
	cfg := &Config{
		Flags:           cfgFlags,
		DataDir:         filepath.Join(appDir, activeParams.Name, defaultDataDirname),
		ActiveNetParams: &activeParams,
		Callsite:        callsite,
	}
	cfg.AppDir = appDir

	logDir := cfgFlags.LogDir
	if logDir == "" {
		logDir = filepath.Join(appDir, defaultLogDirname)
	}
	logDir = filepath.Join(cleanAndExpandPath(logDir), activeParams.Name)
	cfg.LogDir = logDir
	cfg.LogFile = filepath.Join(logDir, defaultLogFilename)
	cfg.ErrLogFile = filepath.Join(logDir, defaultErrLogFilename)

	log.Debugf("Resolved configuration for %s, data directory %s", activeParams.Name, cfg.DataDir)
	return cfg, nil
}

func (f *Flags) netParams() (*dagconfig.Params, error) {
	selected := 0
	params := &dagconfig.MainnetParams
	if f.Testnet {
		selected++
		params = &dagconfig.TestnetParams
	}
	if f.Devnet {
		selected++
		params = &dagconfig.DevnetParams
	}
	if f.Simnet {
		selected++
		params = &dagconfig.SimnetParams
	}
	if selected > 1 {
		return nil, errors.New("only one network flag may be set")
	}
	return params, nil
}

// cleanAndExpandPath expands environment variables and a leading ~ in path
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
