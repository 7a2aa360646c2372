package vfs

import "github.com/sirupsen/logrus"

// subsystem loggers, one per component, mirroring the teacher's practice of
// tagging log lines by the subsystem that emitted them rather than sharing a
// single undifferentiated logger.
var (
	logDcache     = logrus.WithField("vfs", "dcache")
	logInodeCache = logrus.WithField("vfs", "inodecache")
	logLRU        = logrus.WithField("vfs", "lru")
	logWalk       = logrus.WithField("vfs", "walk")
	logOps        = logrus.WithField("vfs", "ops")
	logMount      = logrus.WithField("vfs", "mount")
)
