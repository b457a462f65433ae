//go:build linux

package filesystem

import (
	"io/fs"
	"syscall"
	"time"
)

// changeTime returns the inode change time, which also moves on chmod and
// rename, falling back to the modification time.
func changeTime(info fs.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
}
