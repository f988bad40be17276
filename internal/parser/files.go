package parser

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ParseFile parses one file. Files ending in .gz are decompressed
// transparently. I/O failures are fatal and reported with the path.
func (p *Parser) ParseFile(path string, fileIndex int) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open log file '%s': %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Result{}, fmt.Errorf("failed to decompress log file '%s': %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	return p.ParseReader(r, path, fileIndex), nil
}

// ParseFiles parses every file independently and merges the entries into one
// globally time-ordered stream. The sort is stable, so entries with equal
// timestamps keep file argument order first and original line order second.
// Every downstream stage depends on this total order.
func (p *Parser) ParseFiles(paths []string) (Result, error) {
	var merged Result
	for i, path := range paths {
		res, err := p.ParseFile(path, i)
		if err != nil {
			return Result{}, err
		}
		merged.Entries = append(merged.Entries, res.Entries...)
		merged.Warnings = append(merged.Warnings, res.Warnings...)
	}

	sort.SliceStable(merged.Entries, func(i, j int) bool {
		return merged.Entries[i].Timestamp.Before(merged.Entries[j].Timestamp)
	})

	return merged, nil
}
