package app

import (
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
	"github.com/Hoosat-Oy/treegraphd/util/panics"
)

var log = logger.RegisterSubSystem("TGND")
var spawn = panics.GoroutineWrapperFunc(log)
