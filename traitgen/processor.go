// Package traitgen generates the Java sources that give host classes the
// behavior of the traits they declare.
//
// A Processor runs rounds over the elements supplied by a
// discovery.Collaborator. Each round registers the new traits, writes their
// interfaces, then composes every host class on a bounded worker pool. A
// failing host is reported against its element and does not stop its
// siblings.
//
// For one-shot generation use the fluent API:
//
//	result, err := traitgen.FromManifests("./traits").
//	    Workers(4).
//	    ToDir("./build/generated")
package traitgen

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/internal/logging"
	"github.com/tisoft/java-traits/traitgen/compose"
	"github.com/tisoft/java-traits/traitgen/discovery"
	"github.com/tisoft/java-traits/traitgen/java"
	"github.com/tisoft/java-traits/traitgen/sink"
)

// Processor runs generation rounds. The trait registry survives between
// rounds, so hosts may use traits registered in an earlier round. A
// Processor must not run two rounds at once.
type Processor struct {
	cfg      Config
	out      sink.OutputSink
	registry *compose.Registry
	composer *compose.Composer
	log      *zap.SugaredLogger
	rounds   atomic.Int64

	mu     sync.Mutex
	owners map[string]string // output path -> element name
}

// NewProcessor validates cfg and returns a processor writing to out.
func NewProcessor(cfg Config, out sink.OutputSink) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.Configurationf("output sink is required")
	}
	cfg = cfg.WithDefaults()
	return &Processor{
		cfg:      cfg,
		out:      out,
		registry: compose.NewRegistry(),
		composer: compose.NewComposer(compose.Config{
			Naming: cfg.Naming,
			Java:   java.Config{Indent: cfg.Indent},
			Logger: cfg.Logger,
		}),
		log:    logging.Component(cfg.Logger, "processor"),
		owners: make(map[string]string),
	}, nil
}

// Registry returns the trait registry shared by all rounds.
func (p *Processor) Registry() *compose.Registry { return p.registry }

// Config returns the effective configuration.
func (p *Processor) Config() Config { return p.cfg }

// job produces the units of one element.
type job struct {
	elem    discovery.Element
	compose func() ([]compose.Unit, error)
}

// Round processes the elements of one round. Element failures are reported
// to collab and collected in the result; the returned error is only set
// when discovery fails or ctx is cancelled.
//
// Units are composed concurrently, then their paths are claimed in
// discovery order, then the claimed units are written concurrently. An
// element whose file is already claimed by another element fails.
func (p *Processor) Round(ctx context.Context, collab discovery.Collaborator) (*Result, error) {
	start := time.Now()
	n := int(p.rounds.Add(1))
	log := p.log.With(logging.FieldRound, n)

	elems, err := collab.Elements(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "round %d", n)
	}

	rb := &roundBuilder{collab: collab, log: log}
	var traits, hosts []job
	for _, e := range elems {
		switch e.Kind {
		case discovery.KindTrait:
			t, err := TraitFromElement(e)
			if err != nil {
				rb.fail(e, err)
				continue
			}
			added, err := p.registry.Register(t)
			if err != nil {
				rb.fail(e, err)
				continue
			}
			if !added {
				collab.Report(discovery.Diagnostic{
					Severity: discovery.SeverityWarning,
					Pos:      e.Pos,
					Element:  e.Name,
					Message:  "trait " + e.Name + " is already registered; the first declaration is kept",
				})
				continue
			}
			traits = append(traits, job{elem: e, compose: func() ([]compose.Unit, error) {
				u, err := p.composer.Interface(t)
				if err != nil {
					return nil, err
				}
				return []compose.Unit{u}, nil
			}})
		case discovery.KindHost:
			hosts = append(hosts, job{elem: e, compose: func() ([]compose.Unit, error) {
				return p.composeHost(e)
			}})
		default:
			rb.fail(e, errors.Configurationf("%s has unknown element kind %q", e.Name, e.Kind))
		}
	}
	log.Debugw("round started", "traits", len(traits), "hosts", len(hosts), "registered", p.registry.Len())

	// Hosts are composed after every trait of the round is registered.
	jobs := append(traits, hosts...)
	units := make([][]compose.Unit, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := j.compose()
			if err != nil {
				rb.fail(j.elem, err)
				return nil
			}
			units[i] = u
			return nil
		})
	}
	waitErr := g.Wait()

	if waitErr == nil {
		p.claim(rb, jobs, units)
		g, gctx = errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.Workers)
		for i, j := range jobs {
			if units[i] == nil {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				p.commit(gctx, rb, j.elem, units[i])
				return nil
			})
		}
		waitErr = g.Wait()
	}

	res := rb.result(n, time.Since(start))
	log.Infow("round finished",
		logging.FieldCount, res.TypesGenerated,
		"failures", len(res.Failures),
		logging.FieldDuration, res.Duration.Milliseconds())
	if waitErr != nil {
		return res, waitErr
	}
	return res, nil
}

// claim records the element owning each output path, in job order. A job
// producing a path owned by another element fails and its units are
// dropped. Ownership persists across rounds, so an element may regenerate
// its own files later.
func (p *Processor) claim(rb *roundBuilder, jobs []job, units [][]compose.Unit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, j := range jobs {
		if units[i] == nil {
			continue
		}
		if err := p.checkOwners(j.elem.Name, units[i]); err != nil {
			rb.fail(j.elem, err)
			units[i] = nil
			continue
		}
		for _, u := range units[i] {
			p.owners[sink.JavaPath(u.Name)] = j.elem.Name
		}
	}
}

func (p *Processor) checkOwners(elem string, units []compose.Unit) error {
	for _, u := range units {
		path := sink.JavaPath(u.Name)
		if owner, ok := p.owners[path]; ok && owner != elem {
			return errors.Configurationf("%s is also generated for %s", path, owner)
		}
	}
	return nil
}

// release gives up the paths elem owns among units.
func (p *Processor) release(elem string, units []compose.Unit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range units {
		path := sink.JavaPath(u.Name)
		if p.owners[path] == elem {
			delete(p.owners, path)
		}
	}
}

func (p *Processor) composeHost(e discovery.Element) ([]compose.Unit, error) {
	spec, err := HostSpecFromElement(e)
	if err != nil {
		return nil, err
	}
	h, err := p.registry.Resolve(spec)
	if err != nil {
		return nil, err
	}
	return p.composer.Compose(h)
}

// commit writes every unit of one element. If any write fails the units
// already written are withdrawn, when the sink supports it, and the element
// is reported as failed.
func (p *Processor) commit(ctx context.Context, rb *roundBuilder, e discovery.Element, units []compose.Unit) {
	files := make([]OutputFile, 0, len(units))
	for _, u := range units {
		f, err := p.write(ctx, u)
		if err != nil {
			p.withdraw(ctx, files)
			p.release(e.Name, units)
			rb.fail(e, err)
			return
		}
		f.Element = e.Name
		files = append(files, f)
	}
	for _, f := range files {
		rb.log.Infow("generated", logging.FieldFile, f.Path, "kind", f.Kind.String(), "element", f.Element)
	}
	rb.add(files)
}

func (p *Processor) write(ctx context.Context, u compose.Unit) (OutputFile, error) {
	a := sink.Open(ctx, p.out, u.Name)
	defer a.Close()
	if _, err := a.Write(u.Source); err != nil {
		return OutputFile{}, err
	}
	size := a.Size()
	if err := a.Commit(); err != nil {
		return OutputFile{}, err
	}
	return OutputFile{Path: a.Path(), Type: u.Name, Kind: u.Kind, Size: size}, nil
}

func (p *Processor) withdraw(ctx context.Context, files []OutputFile) {
	r, ok := p.out.(sink.Remover)
	if !ok {
		return
	}
	for _, f := range files {
		if err := r.RemoveFile(ctx, f.Path); err != nil {
			p.log.Warnw("could not withdraw partial output", logging.FieldFile, f.Path, logging.FieldError, err)
		}
	}
}

// roundBuilder collects results from concurrent jobs.
type roundBuilder struct {
	collab discovery.Collaborator
	log    *zap.SugaredLogger

	mu       sync.Mutex
	files    []OutputFile
	failures []Failure
}

func (b *roundBuilder) fail(e discovery.Element, err error) {
	b.collab.Report(discovery.ErrorDiagnostic(e, err))
	b.log.Errorw("element failed",
		"element", e.Name,
		logging.FieldErrorCode, string(errors.CodeOf(err)),
		logging.FieldError, err)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, Failure{Element: e.Name, Kind: e.Kind, Pos: e.Pos, Err: err})
}

func (b *roundBuilder) add(files []OutputFile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = append(b.files, files...)
}

func (b *roundBuilder) result(round int, d time.Duration) *Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	files := slices.Clone(b.files)
	failures := slices.Clone(b.failures)
	slices.SortFunc(files, func(x, y OutputFile) int { return strings.Compare(x.Path, y.Path) })
	slices.SortStableFunc(failures, func(x, y Failure) int { return strings.Compare(x.Element, y.Element) })
	return &Result{
		Round:          round,
		Files:          files,
		Failures:       failures,
		TypesGenerated: len(files),
		Duration:       d,
	}
}
