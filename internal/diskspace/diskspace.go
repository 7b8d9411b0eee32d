// Package diskspace reports free space on the filesystem backing a cache
// directory, used by the tile cache and seed job to trip the sticky
// CachingDisabled flag before disk fills up.
package diskspace

import "golang.org/x/sys/unix"

// FreeBytes returns the number of bytes free for an unprivileged writer
// on the filesystem containing path.
func FreeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}
