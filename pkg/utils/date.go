package utils

import (
	"time"
)

var kstLocation = loadKST()

func loadKST() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// KSTLocation returns the Asia/Seoul location, the market time zone.
func KSTLocation() *time.Location {
	return kstLocation
}

// TimeNowKST returns the current time in the Asia/Seoul time zone.
func TimeNowKST() time.Time {
	return time.Now().In(kstLocation)
}

// PrettyDate formats t for human-facing messages.
func PrettyDate(t time.Time) string {
	return t.In(kstLocation).Format("2006-01-02 15:04:05 KST")
}
