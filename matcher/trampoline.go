package matcher

import "github.com/coregx/parco/stream"

// Trampoline is the cooperative scheduler that evaluates matcher generators
// without native recursion. It maintains an explicit stack of suspended
// generators: a StepCall pushes the child, a StepYield pops the producer and
// resumes its parent with the result, a StepDone pops and resumes the parent
// with exhaustion.
//
// A trampoline holds no per-parse state itself; Run returns a Parses
// iterator that owns the stack for one evaluation.
type Trampoline struct {
	monitors []Monitor
}

// NewTrampoline creates a trampoline reporting to the given monitors.
func NewTrampoline(monitors ...Monitor) *Trampoline {
	return &Trampoline{monitors: monitors}
}

// Run starts evaluating root and returns the lazy sequence of its parses.
func (t *Trampoline) Run(root Generator) *Parses {
	return &Parses{monitors: t.monitors, root: root}
}

// Parse evaluates the matcher at cursor c within a fresh context and returns
// the lazy parse sequence. This is the usual entry point: the parser facade
// calls it once per input.
func (t *Trampoline) Parse(m Matcher, c stream.Cursor) *Parses {
	return t.Run(m.Match(NewContext(), c))
}

// Parses is a lazy sequence of parse results driven by the trampoline.
// Pull results with Next; check Err after Next returns false; Close abandons
// the evaluation early, closing every suspended generator.
type Parses struct {
	monitors []Monitor
	root     Generator

	stack    []Generator
	reply    Reply
	epoch    int
	err      error
	finished bool
}

// Next returns the next parse. It returns false when the sequence is
// exhausted or an error aborted the evaluation (see Err).
func (p *Parses) Next() (Result, bool) {
	if p.finished {
		return Result{}, false
	}
	if len(p.stack) == 0 {
		// First pull, or resumption of the root after it yielded.
		p.push(p.root)
		p.reply = Reply{}
	}
	for {
		p.epoch++
		for _, m := range p.monitors {
			if err := m.NextIteration(p.epoch); err != nil {
				p.abort(err)
				return Result{}, false
			}
		}

		top := p.stack[len(p.stack)-1]
		step, err := top.Step(p.reply)
		p.reply = Reply{}
		if err != nil {
			p.abort(err)
			return Result{}, false
		}

		switch step.Kind {
		case StepCall:
			p.push(step.Child)

		case StepYield:
			p.pop(top)
			if len(p.stack) == 0 {
				for _, m := range p.monitors {
					m.Emit(step.Result)
				}
				return step.Result, true
			}
			p.reply = Reply{Result: step.Result, OK: true}

		case StepDone:
			p.pop(top)
			top.Close()
			for _, m := range p.monitors {
				m.Discard(top)
			}
			if len(p.stack) == 0 {
				p.finished = true
				return Result{}, false
			}
			p.reply = Reply{OK: false}
		}
	}
}

// Err returns the error that aborted the evaluation, if any. Parse failure
// is not an error; it is simply an exhausted sequence.
func (p *Parses) Err() error {
	return p.err
}

// Close abandons the evaluation, closing every suspended generator. It is
// safe to call Close multiple times and after exhaustion.
func (p *Parses) Close() {
	if p.finished {
		return
	}
	p.teardown()
	p.finished = true
}

// All drains the sequence into a slice. It returns the results collected so
// far and the abort error, if any.
func (p *Parses) All() ([]Result, error) {
	var out []Result
	for {
		r, ok := p.Next()
		if !ok {
			return out, p.Err()
		}
		out = append(out, r)
	}
}

func (p *Parses) push(g Generator) {
	p.stack = append(p.stack, g)
	for _, m := range p.monitors {
		m.Push(g)
	}
}

func (p *Parses) pop(g Generator) {
	p.stack = p.stack[:len(p.stack)-1]
	for _, m := range p.monitors {
		m.Pop(g)
	}
}

func (p *Parses) abort(err error) {
	p.teardown()
	p.err = err
	p.finished = true
}

// teardown closes every active generator, deepest first.
func (p *Parses) teardown() {
	for i := len(p.stack) - 1; i >= 0; i-- {
		g := p.stack[i]
		g.Close()
		for _, m := range p.monitors {
			m.Pop(g)
			m.Discard(g)
		}
	}
	p.stack = nil
	p.root.Close()
}
