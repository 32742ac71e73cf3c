package util

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nfslabs/idmapd/lib/idmap"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += len(word)
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupCacheFlags adds the cache construction flags shared by all subcommands
func SetupCacheFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 600, WrapString("TTL of cached mappings in seconds"))

	key = "size-hint"
	cmd.PersistentFlags().Int(key, 1024, WrapString("Expected number of entries per table, used as a presizing hint"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("Log level (debug, info, warn, error)"))
}

// GetCacheConfig reads the shared cache flags back out of viper
func GetCacheConfig() idmap.Config {
	return idmap.Config{
		Timeout:  time.Duration(viper.GetInt("timeout")) * time.Second,
		SizeHint: viper.GetInt("size-hint"),
	}
}
