/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"os"
)

const maxCatalogSize = 64 << 20

func readCatalogFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read restaurant catalog: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("read restaurant catalog: %s is a directory", path)
	}
	if info.Size() > maxCatalogSize {
		return nil, fmt.Errorf("read restaurant catalog: %s is %s, limit is %s",
			path, humanReadableSize(info.Size()), humanReadableSize(maxCatalogSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read restaurant catalog: %w", err)
	}

	return data, nil
}

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}
