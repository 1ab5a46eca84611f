//go:build !linux

package storage

import "time"

func birthTime(_ string) (time.Time, bool) {
	return time.Time{}, false
}
