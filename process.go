package mpt

import (
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// progressThreshold is the file count past which batch expansion shows a
// progress bar.
const progressThreshold = 10

// ProcessFiles expands every path with a fresh engine per file and collects
// the results. A nil cache disables result caching. A read failure on one
// file aborts the batch.
func ProcessFiles(logger *zap.Logger, factory EngineFactory, paths []string, instantFail bool, cache *Cache) ([]Result, error) {
	var bar *progressbar.ProgressBar
	if len(paths) > progressThreshold {
		bar = progressbar.Default(int64(len(paths)), "expanding")
	}

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		if cache != nil {
			if res, ok := cache.Get(path); ok {
				if logger != nil {
					logger.Debug("cache hit", zap.String("file", path))
				}
				results = append(results, res)
				if bar != nil {
					_ = bar.Add(1)
				}
				continue
			}
		}

		result, err := ExpandFile(factory(), path, instantFail)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing file", zap.String("file", path), zap.Error(err))
			}
			return nil, err
		}
		if logger != nil {
			logger.Debug("expanded file",
				zap.String("file", path),
				zap.Int("errors", len(result.Errors)))
		}
		if cache != nil {
			if err := cache.Set(result); err != nil && logger != nil {
				logger.Warn("failed to cache result", zap.String("file", path), zap.Error(err))
			}
		}
		results = append(results, result)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return results, nil
}
