package wfs

import "errors"

// Package-specific error variables, usable with errors.Is() for error handling,
// following the same convention as the teacher's errors.go.
var (
	// ErrNotFound is returned when a path or inode has no current live entry.
	ErrNotFound = errors.New("wfs: no such file or directory")

	// ErrExists is returned when a create operation targets a name that already resolves.
	ErrExists = errors.New("wfs: file exists")

	// ErrNotADirectory is returned when path resolution or an operation expects a directory.
	ErrNotADirectory = errors.New("wfs: not a directory")

	// ErrIsADirectory is returned when an operation expects a regular file.
	ErrIsADirectory = errors.New("wfs: is a directory")

	// ErrNameTooLong is returned when a basename exceeds MaxFileNameLen-1 bytes.
	ErrNameTooLong = errors.New("wfs: file name too long")

	// ErrNoSpace is returned when the log has no room left before the image end.
	ErrNoSpace = errors.New("wfs: no space left on device")

	// ErrBadMagic is returned when the superblock magic does not match WFSMagic.
	ErrBadMagic = errors.New("wfs: invalid superblock magic")

	// ErrTruncated is returned when the image is shorter than the superblock claims.
	ErrTruncated = errors.New("wfs: image truncated")

	// ErrCorrupt is returned for structurally invalid log data not explained by truncation,
	// e.g. a directory payload that isn't a multiple of DentrySize.
	ErrCorrupt = errors.New("wfs: corrupt log data")

	// ErrDirNotEmpty is returned by rmdir when the directory still has entries.
	ErrDirNotEmpty = errors.New("wfs: directory not empty")

	// ErrNotSupported is returned for operations this filesystem deliberately rejects,
	// such as cross-directory rename.
	ErrNotSupported = errors.New("wfs: operation not supported")

	// ErrPermissionDenied is returned when an operation would remove the root directory.
	ErrPermissionDenied = errors.New("wfs: permission denied")
)

// Errno classifies a wfs error into the POSIX-ish taxonomy from spec §7.
// The host gateway (out of core scope) is responsible for turning this into
// an actual syscall.Errno; this just groups the mapping in one place so it
// doesn't need to import a FUSE library.
type Errno int

const (
	EOK Errno = iota
	ENOENT
	EEXIST
	ENOTDIR
	EISDIR
	ENAMETOOLONG
	ENOSPC
	EIO
	ENOTEMPTY
	ENOTSUP
	EPERM
)

// ToErrno classifies err against the package's error taxonomy. Unrecognized
// errors, including plain I/O errors from the Device, map to EIO.
func ToErrno(err error) Errno {
	switch {
	case err == nil:
		return EOK
	case errors.Is(err, ErrNotFound):
		return ENOENT
	case errors.Is(err, ErrExists):
		return EEXIST
	case errors.Is(err, ErrNotADirectory):
		return ENOTDIR
	case errors.Is(err, ErrIsADirectory):
		return EISDIR
	case errors.Is(err, ErrNameTooLong):
		return ENAMETOOLONG
	case errors.Is(err, ErrNoSpace):
		return ENOSPC
	case errors.Is(err, ErrDirNotEmpty):
		return ENOTEMPTY
	case errors.Is(err, ErrNotSupported):
		return ENOTSUP
	case errors.Is(err, ErrPermissionDenied):
		return EPERM
	case errors.Is(err, ErrBadMagic), errors.Is(err, ErrTruncated), errors.Is(err, ErrCorrupt):
		return EIO
	default:
		return EIO
	}
}
