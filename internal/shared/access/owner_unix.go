//go:build unix

package access

import (
	"io/fs"
	"os"
	"syscall"
)

func processIdentity() (uint32, uint32) {
	return uint32(os.Geteuid()), uint32(os.Getegid())
}

func ownerOf(info fs.FileInfo) (uid, gid uint32, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return stat.Uid, stat.Gid, true
}
