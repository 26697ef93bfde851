package pkgverify

import (
	"io/ioutil"
	"log"
	"os"
	"strings"
)

// Ctx defines the supporting context of the tool: where it runs, its
// environment and where its two output streams go.
type Ctx struct {
	WorkingDir string
	Env        []string    // environment in os.Environ form; nil means the real one
	Out        *log.Logger // standard output
	Err        *log.Logger // error output
	Verbose    bool
}

// Getenv returns the last instance of an environment variable.
func (c *Ctx) Getenv(key string) string {
	if c.Env == nil {
		return os.Getenv(key)
	}
	for i := len(c.Env) - 1; i >= 0; i-- {
		kv := strings.SplitN(c.Env[i], "=", 2)
		if kv[0] == key {
			if len(kv) > 1 {
				return kv[1]
			}
			return ""
		}
	}
	return ""
}

// Tracer returns the trace hook implied by the context: unconditional when
// -v was given, otherwise gated on NODE_DEBUG.
func (c *Ctx) Tracer() TraceFunc {
	if c.Verbose {
		return Tracer(c.Err.Writer())
	}
	return NewTracer(c.Err.Writer())
}

// DiscardCtx is a context whose output goes nowhere, for library callers
// that only want return values.
func DiscardCtx(wd string) *Ctx {
	l := log.New(ioutil.Discard, "", 0)
	return &Ctx{WorkingDir: wd, Out: l, Err: l}
}
