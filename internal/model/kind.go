package model

import "io/fs"

// Kind is the filesystem type of a node
type Kind uint8

const (
	KindMetaRoot Kind = iota
	KindDirectory
	KindRegular
	KindSymlink
	KindFIFO
	KindSocket
	KindCharDevice
	KindBlockDevice
	KindUnknown

	// NumKinds is the number of node kinds (size of per-kind count arrays)
	NumKinds
)

var kindNames = [NumKinds]string{
	KindMetaRoot:    "metanode",
	KindDirectory:   "directory",
	KindRegular:     "file",
	KindSymlink:     "symlink",
	KindFIFO:        "fifo",
	KindSocket:      "socket",
	KindCharDevice:  "char device",
	KindBlockDevice: "block device",
	KindUnknown:     "unknown",
}

// String returns a human-readable kind name
func (k Kind) String() string {
	if k >= NumKinds {
		return "invalid"
	}
	return kindNames[k]
}

// KindFromMode maps file mode type bits to a node kind
func KindFromMode(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindRegular
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode&fs.ModeNamedPipe != 0:
		return KindFIFO
	case mode&fs.ModeSocket != 0:
		return KindSocket
	case mode&fs.ModeCharDevice != 0:
		return KindCharDevice
	case mode&fs.ModeDevice != 0:
		return KindBlockDevice
	default:
		return KindUnknown
	}
}
