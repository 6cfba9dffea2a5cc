package blockvalidator

import (
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BLVL")
