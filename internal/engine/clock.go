package engine

import "time"

func defaultWallClock() int64 {
	return time.Now().UnixMilli()
}
