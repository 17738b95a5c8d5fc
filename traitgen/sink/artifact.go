package sink

import (
	"bufio"
	"bytes"
	"context"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/ir"
)

// Artifact is a scoped output stream for one generated type. Content is
// buffered until Commit hands it to the sink in a single write. Close
// always releases the stream and discards anything not committed, so a
// failed session never leaves a partial artifact behind.
//
//	a := sink.Open(ctx, out, name)
//	defer a.Close()
//	if _, err := a.Write(src); err != nil {
//	    return err
//	}
//	return a.Commit()
type Artifact struct {
	ctx  context.Context
	sink OutputSink
	path string

	content bytes.Buffer
	w       *bufio.Writer

	committed bool
	closed    bool
}

// Open starts an artifact session for the type called name.
func Open(ctx context.Context, s OutputSink, name ir.ClassName) *Artifact {
	a := &Artifact{ctx: ctx, sink: s, path: JavaPath(name)}
	a.w = bufio.NewWriter(&a.content)
	return a
}

// Path returns the sink path the artifact commits to.
func (a *Artifact) Path() string { return a.path }

// Write buffers p. Writing after Commit or Close fails.
func (a *Artifact) Write(p []byte) (int, error) {
	if a.closed || a.committed {
		return 0, errors.IO(errSessionDone, "write %s", a.path)
	}
	return a.w.Write(p)
}

// Commit flushes the buffer and writes the artifact to the sink. It may be
// called once; the session stays open until Close.
func (a *Artifact) Commit() error {
	if a.closed || a.committed {
		return errors.IO(errSessionDone, "commit %s", a.path)
	}
	if err := a.w.Flush(); err != nil {
		return errors.IO(err, "flush %s", a.path)
	}
	if err := a.sink.WriteFile(a.ctx, a.path, a.content.Bytes()); err != nil {
		return errors.IO(err, "write %s", a.path)
	}
	a.committed = true
	return nil
}

// Size returns the number of bytes written so far.
func (a *Artifact) Size() int64 {
	return int64(a.content.Len() + a.w.Buffered())
}

// Close ends the session. Uncommitted content is dropped. Close is
// idempotent.
func (a *Artifact) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if !a.committed {
		a.w.Reset(&a.content)
		a.content.Reset()
	}
	return nil
}

var errSessionDone = errors.New("artifact session already committed or closed")
