package application

import "time"

// Clock supplies wall-clock time so scan timestamps can be pinned in tests
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
