package logger

import "strings"

// Level is the minimum severity a logger writes. Messages below it are
// dropped.
type Level uint32

// Level constants.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// levelNames holds the tag printed in log lines and the long name accepted
// on the command line, indexed by level
var levelNames = [...]struct{ tag, name string }{
	LevelTrace:    {"TRC", "trace"},
	LevelDebug:    {"DBG", "debug"},
	LevelInfo:     {"INF", "info"},
	LevelWarn:     {"WRN", "warn"},
	LevelError:    {"ERR", "error"},
	LevelCritical: {"CRT", "critical"},
	LevelOff:      {"OFF", "off"},
}

// LevelFromString accepts a level by its long name or its tag, in any case.
// Unknown input yields LevelInfo and false.
func LevelFromString(s string) (Level, bool) {
	for level, names := range levelNames {
		if strings.EqualFold(s, names.name) || strings.EqualFold(s, names.tag) {
			return Level(level), true
		}
	}
	return LevelInfo, false
}

// String returns the tag the level is printed with.
func (l Level) String() string {
	if l >= LevelOff {
		return levelNames[LevelOff].tag
	}
	return levelNames[l].tag
}
