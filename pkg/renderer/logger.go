package renderer

import (
	"fmt"
	"io"
	"os"

	"github.com/df07/go-stereo-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct {
	prefix string
	out    io.Writer
}

// Printf writes the prefix verbatim, then the formatted message
func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	out := dl.out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprint(out, dl.prefix)
	fmt.Fprintf(out, format, args...)
}

// NewPrefixedLogger creates a stdout logger that tags every line, e.g. with a render ID
func NewPrefixedLogger(prefix string) core.Logger {
	return &DefaultLogger{prefix: fmt.Sprintf("[%s] ", prefix)}
}
