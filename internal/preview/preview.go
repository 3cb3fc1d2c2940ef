// Package preview keeps the latest schema text of an editing session and
// the diagram rendered from it.
//
// Updates coalesce to the most recent text: SetText, Reparse and Current
// serialise on one mutex, each parse runs to completion on the text current
// at the time, and subscribers only ever see the newest snapshot.
package preview

import (
	"sync"

	"dbizzy/internal/ddl"
	"dbizzy/internal/graph"
	"dbizzy/internal/logger"
	"dbizzy/internal/model"
)

// Snapshot is the outcome of one parse.
type Snapshot struct {
	Revision    uint64             `json:"revision"`
	Schema      model.Schema       `json:"schema"`
	PrimaryKeys []model.PrimaryKey `json:"primary_keys"`
	Stats       ddl.Stats          `json:"stats"`
	DOT         string             `json:"dot"`
	Empty       bool               `json:"empty"`
}

type Preview struct {
	mu   sync.Mutex
	opts graph.Options
	text string
	snap Snapshot
	subs map[chan Snapshot]struct{}
}

// New returns a Preview of the empty text, drawn with opts.
func New(opts graph.Options) *Preview {
	p := &Preview{
		opts: opts.WithDefaults(),
		subs: map[chan Snapshot]struct{}{},
	}
	p.snap = p.render()
	return p
}

// SetText replaces the stored text and parses it.
func (p *Preview) SetText(text string) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text = text
	return p.update()
}

// Reparse parses the stored text again.
func (p *Preview) Reparse() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.update()
}

// Current returns the last snapshot without parsing.
func (p *Preview) Current() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Text returns the stored text.
func (p *Preview) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

// Subscribe returns a channel that receives every later snapshot. A slow
// reader misses intermediate snapshots, never the newest one. The returned
// func unsubscribes and closes the channel.
func (p *Preview) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, ch)
			p.mu.Unlock()
			close(ch)
		})
	}
}

// update must be called with mu held.
func (p *Preview) update() Snapshot {
	snap := p.render()
	snap.Revision = p.snap.Revision + 1
	p.snap = snap
	if snap.Empty {
		logger.Warn("no tables found in %d lines of schema text", snap.Stats.Lines)
	}

	for ch := range p.subs {
		// drop the stale snapshot, if any, to make room
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
	return snap
}

func (p *Preview) render() Snapshot {
	return Render(p.text, p.opts)
}

// Render parses text and draws it, outside of any session. The snapshot
// has revision 0.
func Render(text string, opts graph.Options) Snapshot {
	res := ddl.Parse(text)
	return Snapshot{
		Schema:      res.Schema,
		PrimaryKeys: res.PrimaryKeys,
		Stats:       res.Stats,
		DOT:         graph.DOT(res.Schema, opts),
		Empty:       res.Empty(),
	}
}
