package service

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// maxSuffix bounds the collision search for one target name.
const maxSuffix = 10000

type FlattenOptions struct {
	// Numbered prefixes every output with its 1-based position, "%03d_".
	Numbered bool
}

type CopiedFile struct {
	Source string
	Target string
	Bytes  int64
}

type FlattenReport struct {
	Copied []CopiedFile
	Failed []FileFailure
}

// Flatten copies every regular non-hidden file under src into dst as a flat
// list. Existing files are never overwritten: a taken name gets a "_N"
// suffix before its extension. When dst lies inside src it is not walked.
func Flatten(src, dst string, opts FlattenOptions, logger *zap.Logger) (FlattenReport, error) {
	var report FlattenReport

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return report, fmt.Errorf("failed to resolve source: %w", err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return report, fmt.Errorf("failed to resolve destination: %w", err)
	}
	info, err := os.Stat(absSrc)
	if err != nil {
		return report, fmt.Errorf("source directory not found: %w", err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("%s is not a directory", absSrc)
	}
	if absSrc == absDst {
		return report, errors.New("source and destination must differ")
	}
	if err := os.MkdirAll(absDst, 0o755); err != nil {
		return report, fmt.Errorf("failed to create destination: %w", err)
	}

	paths, failures := collectFiles(absSrc, absDst)
	report.Failed = append(report.Failed, failures...)
	sort.Strings(paths)

	logger.Info("Flattening directory",
		zap.String("source", absSrc),
		zap.String("destination", absDst),
		zap.Int("files", len(paths)),
		zap.Bool("numbered", opts.Numbered),
	)

	for i, path := range paths {
		name := filepath.Base(path)
		if opts.Numbered {
			name = fmt.Sprintf("%03d_%s", i+1, name)
		}
		target, n, err := copyExclusive(path, absDst, name)
		if err != nil {
			logger.Error("Copy failed", zap.String("path", path), zap.Error(err))
			report.Failed = append(report.Failed, FileFailure{Path: path, Err: err})
			continue
		}
		logger.Debug("Copied", zap.String("from", path), zap.String("to", target))
		report.Copied = append(report.Copied, CopiedFile{Source: path, Target: target, Bytes: n})
	}

	logger.Info("Flatten finished",
		zap.Int("copied", len(report.Copied)),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// copyExclusive copies path into dir under name, or name_1, name_2 ... if
// taken. The target is created with O_EXCL.
func copyExclusive(path, dir, name string) (string, int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		target := filepath.Join(dir, candidate)

		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, fmt.Errorf("failed to create target: %w", err)
		}

		n, err := io.Copy(out, in)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(target)
			return "", 0, fmt.Errorf("failed to copy: %w", err)
		}
		return target, n, nil
	}
	return "", 0, fmt.Errorf("no free name for %s after %d attempts", name, maxSuffix)
}

type FolderCount struct {
	Folder string
	Files  int
}

// CountFiles returns the number of non-hidden files under each non-hidden
// child folder of root, in name order.
func CountFiles(root string) ([]FolderCount, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	var counts []FolderCount
	for _, e := range entries {
		if !e.IsDir() || isHidden(e.Name()) {
			continue
		}
		files, failures := collectFiles(filepath.Join(root, e.Name()), "")
		if len(failures) > 0 {
			return nil, fmt.Errorf("failed to walk %s: %w", e.Name(), failures[0].Err)
		}
		counts = append(counts, FolderCount{Folder: e.Name(), Files: len(files)})
	}
	return counts, nil
}
