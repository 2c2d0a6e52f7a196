package util

import (
	"os"

	"github.com/rs/zerolog/log"
)

// EnsureDir creates missing directories, parents included.
func EnsureDir(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("Failed to create")
			return err
		}
	}
	return nil
}

func RemoveFile(files ...string) {
	for _, file := range files {
		log.Debug().Str("file", file).Msg("Removing temporary")
		if err := os.Remove(file); err != nil {
			log.Error().Err(err).Str("file", file).Msg("Failed to remove")
		}
	}
}

// IsFile reports whether path exists and is a regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
