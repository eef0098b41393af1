package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NowISO returns the current UTC time as an ISO-8601 string.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// CurrentSyncVersion derives the sync version label for the current date,
// e.g. "v260830" on 2026-08-30.
func CurrentSyncVersion() string {
	return fmt.Sprintf("v%s", time.Now().UTC().Format("060102"))
}

// CurrentCapturedYMD returns the current date as a YYYYMMDD integer.
func CurrentCapturedYMD() int64 {
	ymd, _ := strconv.ParseInt(time.Now().UTC().Format("20060102"), 10, 64)
	return ymd
}

// SyncVersionFromISO derives the sync version label from an ISO timestamp.
// Falls back to the current date when the timestamp is malformed.
func SyncVersionFromISO(timestamp string) string {
	if len(timestamp) >= 10 {
		ymd := strings.ReplaceAll(timestamp[2:10], "-", "")
		if len(ymd) == 6 {
			return "v" + ymd
		}
	}
	return CurrentSyncVersion()
}

// CapturedYMDFromISO derives the YYYYMMDD integer from an ISO timestamp.
// Returns 0 when the timestamp is malformed.
func CapturedYMDFromISO(timestamp string) int64 {
	if len(timestamp) < 10 {
		return 0
	}
	ymd, err := strconv.ParseInt(strings.ReplaceAll(timestamp[0:10], "-", ""), 10, 64)
	if err != nil {
		return 0
	}
	return ymd
}

// CapturedYMDFromSyncVersion recovers the YYYYMMDD integer from a
// date-derived version label ("vYYMMDD"). Returns 0 for opaque labels.
func CapturedYMDFromSyncVersion(syncVersion string) int64 {
	if len(syncVersion) != 7 || !strings.HasPrefix(syncVersion, "v") {
		return 0
	}
	digits := syncVersion[1:]
	ymd, err := strconv.ParseInt("20"+digits, 10, 64)
	if err != nil {
		return 0
	}
	return ymd
}
