package blocklogger

import (
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BDAG")
