package wfs

import "io/fs"

// wfs only ever stores two inode types, regular files and directories (no
// symlinks, devices, sockets or fifos — see SPEC_FULL.md Non-goals), so
// this is a narrow generalization of the teacher's UnixToMode/ModeToUnix
// pair rather than a full unix mode mapping.

func UnixToMode(mode uint32) fs.FileMode {
	res := fs.FileMode(mode & 0777)
	if mode&ModeTypeMask == ModeDir {
		res |= fs.ModeDir
	}
	return res
}

func ModeToUnix(mode fs.FileMode) uint32 {
	res := uint32(mode.Perm())
	if mode.IsDir() {
		res |= ModeDir
	} else {
		res |= ModeReg
	}
	return res
}
