// Package log is a small wrapper around the standard library logger that
// gives every component of reposearch its own named logger.
//
// Each line carries a `[name>]` marker after the timestamp, e.g.
//
//	2024/05/01 10:00:00.000000 INFO [search>] GET search/repositories page=1
//
// Debug output is off by default. It can be enabled for every logger with
// SetGlobalDebug (the --debug flag) or for a single component:
//
//	log.EnableDebugFor("history")
//	log.ForService("history").Debugf("persisted %d items", n)
//
// Tests redirect all loggers with SetOutput(&buf).
package log
