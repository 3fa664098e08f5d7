//go:build linux

package index

import (
	"io/fs"
	"syscall"
)

func fillStat(e *Entry, info fs.FileInfo) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	e.CtimeSeconds = uint32(st.Ctim.Sec)
	e.CtimeNanos = uint32(st.Ctim.Nsec)
	e.Dev = uint32(st.Dev)
	e.Ino = uint32(st.Ino)
	e.UID = st.Uid
	e.GID = st.Gid
}
