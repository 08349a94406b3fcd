//go:build darwin

package storage

import (
	"os"
	"syscall"
	"time"
)

// birthTime returns the file's birth time where the platform records one.
func birthTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
	}
	return info.ModTime()
}
