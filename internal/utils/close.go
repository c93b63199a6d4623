package utils

import (
	"io"

	"github.com/MrSnakeDoc/marks/internal/logger"
)

// MustClose closes c and logs any error under the given name.
// Returns true when c closed cleanly.
func MustClose(c io.Closer, name string, log logger.Logger) bool {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", name), logger.Error(err))
		return false
	}
	return true
}
