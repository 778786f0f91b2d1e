package splitkeycrypt

import (
	"fmt"
	"io"

	tr "github.com/pschlump/godebug"
)

// SetTrace enables structural debug tracing to w: a conditional print
// gated by whether a writer has been set, tagged with godebug.LF()'s
// call-site locator. Trace output carries only non-secret structural
// facts, format id and field lengths, never key material, plaintext, or
// MAC bytes.
func (c *Core) SetTrace(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trace = w
}

func (c *Core) tracef(format string, args ...interface{}) {
	if c.trace == nil {
		return
	}
	fmt.Fprintf(c.trace, format+" %s\n", append(args, tr.LF(2))...)
}
