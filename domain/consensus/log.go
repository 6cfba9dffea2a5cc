package consensus

import (
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
	"github.com/Hoosat-Oy/treegraphd/util/panics"
)

var log = logger.RegisterSubSystem("CNSS")
var spawn = panics.GoroutineWrapperFunc(log)
