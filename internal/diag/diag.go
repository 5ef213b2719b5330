// Package diag defines the diagnostics sink discovery reports
// per-candidate failures through, using logrus for debug-gated
// logging.
package diag

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Sink receives non-fatal failures encountered while walking location
// providers or verifying candidates. Discovery never aborts because of
// these; they are purely informational.
type Sink interface {
	Skip(candidate, reason string, err error)
	ProviderError(provider string, err error)
}

// NoOp discards every diagnostic. Useful for library callers who
// don't want logging side effects.
type NoOp struct{}

func (NoOp) Skip(candidate, reason string, err error) {}
func (NoOp) ProviderError(provider string, err error) {}

// Logrus is the default Sink: skipped candidates are only logged with
// PYFIND_DEBUG-style opt-in, provider errors are always logged as
// warnings; both are formatted with structured fields rather than
// free text.
type Logrus struct {
	log *logrus.Logger
}

// NewLogrus builds a Sink that writes to w at the given level. Debug
// level surfaces every skip; Info and above only surfaces provider
// errors (a directory that couldn't be read, a registry hive that
// couldn't be opened).
func NewLogrus(w io.Writer, debug bool) *Logrus {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{DisableLevelTruncation: true, DisableTimestamp: true}
	if debug {
		log.Level = logrus.DebugLevel
	}
	return &Logrus{log: log}
}

// NewLogrusFromEnv builds a Logrus sink writing to stderr, honouring
// the PYFIND_DEBUG environment variable.
func NewLogrusFromEnv() *Logrus {
	debug := os.Getenv("PYFIND_DEBUG") != ""
	return NewLogrus(os.Stderr, debug)
}

func (l *Logrus) Skip(candidate, reason string, err error) {
	fields := logrus.Fields{"candidate": candidate, "reason": reason}
	if err != nil {
		fields["error"] = err
	}
	l.log.WithFields(fields).Debugln("skipping candidate")
}

func (l *Logrus) ProviderError(provider string, err error) {
	l.log.WithFields(logrus.Fields{"provider": provider, "error": err}).Warnln("location provider error")
}
