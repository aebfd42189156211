package model

import "fmt"

// Volume describes the filesystem holding a scanned root
type Volume struct {
	Path       string
	TotalBytes int64
	FreeBytes  int64
}

// UsedBytes returns bytes used on this volume
func (v Volume) UsedBytes() int64 {
	return v.TotalBytes - v.FreeBytes
}

// UsedPercent returns percentage of volume used
func (v Volume) UsedPercent() float64 {
	if v.TotalBytes == 0 {
		return 0
	}
	return float64(v.UsedBytes()) / float64(v.TotalBytes) * 100
}

// VolumeOf returns space information for the volume containing path
func VolumeOf(path string) (Volume, error) {
	total, free, err := diskSpace(path)
	if err != nil {
		return Volume{Path: path}, fmt.Errorf("volume %s: %w", path, err)
	}
	return Volume{Path: path, TotalBytes: total, FreeBytes: free}, nil
}
