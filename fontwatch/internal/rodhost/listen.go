package rodhost

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/mmfont/mutation"
)

// nodeIDs maps the frontend node ids CDP events carry to backend ids.
type nodeIDs map[proto.DOMNodeID]proto.DOMBackendNodeID

func (m nodeIDs) add(n *proto.DOMNode) {
	if n == nil {
		return
	}
	m[n.NodeID] = n.BackendNodeID
	for _, c := range n.Children {
		m.add(c)
	}
	for _, c := range n.ShadowRoots {
		m.add(c)
	}
	if n.ContentDocument != nil {
		m.add(n.ContentDocument)
	}
}

func (m nodeIDs) reset(root *proto.DOMNode) {
	for k := range m {
		delete(m, k)
	}
	m.add(root)
}

// Listener turns CDP DOM events and the page's load checkpoint into
// mutation records.
type Listener struct {
	page   *rod.Page
	out    chan<- mutation.Record
	ids    nodeIDs
	logger *slog.Logger
	// settleTimeout bounds the wait for load and fonts. The settled
	// record is sent when it expires either way.
	settleTimeout time.Duration
	// ready waits for the load event and the font faces in use.
	ready      func(ctx context.Context) error
	settleOnce sync.Once
}

// Listen enables DOM tracking on page and starts delivering records to
// out until ctx is cancelled. The settled record is not sent until
// AwaitSettled is called.
func Listen(ctx context.Context, page *rod.Page, out chan<- mutation.Record, settleTimeout time.Duration, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if settleTimeout <= 0 {
		settleTimeout = 30 * time.Second
	}
	l := &Listener{page: page, out: out, ids: make(nodeIDs), logger: logger, settleTimeout: settleTimeout}
	l.ready = l.pageReady

	if err := (proto.DOMEnable{}).Call(page); err != nil {
		return nil, err
	}

	wait := page.Context(ctx).EachEvent(
		func(e *proto.DOMSetChildNodes) {
			for _, n := range e.Nodes {
				l.ids.add(n)
			}
		},
		func(e *proto.DOMChildNodeInserted) {
			l.ids.add(e.Node)
			l.send(ctx, mutation.Insert(e.Node.BackendNodeID))
		},
		func(e *proto.DOMCharacterDataModified) {
			if id, ok := l.ids[e.NodeID]; ok {
				l.send(ctx, mutation.Text(id))
			}
		},
		func(e *proto.DOMChildNodeRemoved) {
			if id, ok := l.ids[e.NodeID]; ok {
				delete(l.ids, e.NodeID)
				l.send(ctx, mutation.Remove(id))
			}
		},
		func(e *proto.DOMDocumentUpdated) {
			if err := l.track(); err != nil {
				logger.Warn("rodhost: document updated, re-track failed", "error", err)
			}
		},
	)
	// Events only arrive for nodes the client knows about, hence depth -1.
	if err := l.track(); err != nil {
		return nil, err
	}
	go wait()
	return l, nil
}

func (l *Listener) track() error {
	depth := -1
	doc, err := proto.DOMGetDocument{Depth: &depth, Pierce: true}.Call(l.page)
	if err != nil {
		return err
	}
	l.ids.reset(doc.Root)
	return nil
}

func (l *Listener) send(ctx context.Context, rec mutation.Record) {
	select {
	case l.out <- rec:
	case <-ctx.Done():
	}
}

// AwaitSettled sends exactly one settled record once the page has loaded
// and the font faces used by the document, including those the first tag
// pass brought in through marker classes, are ready, or settleTimeout has
// passed. Call it after the first tag pass; later calls do nothing.
func (l *Listener) AwaitSettled(ctx context.Context) {
	l.settleOnce.Do(func() { go l.settle(ctx) })
}

func (l *Listener) settle(ctx context.Context) {
	wctx, cancel := context.WithTimeout(ctx, l.settleTimeout)
	defer cancel()
	if err := l.ready(wctx); err != nil {
		l.logger.Warn("rodhost: wait settle", "error", err)
	}
	if ctx.Err() != nil {
		return
	}
	l.send(ctx, mutation.Settled())
}

// fontsReadyJS forces a layout so faces required by freshly applied
// classes start loading, then waits for the font set.
const fontsReadyJS = `() => {
	if (document.body) document.body.getBoundingClientRect();
	return document.fonts ? document.fonts.ready.then(() => true) : true;
}`

func (l *Listener) pageReady(ctx context.Context) error {
	p := l.page.Context(ctx)
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("rodhost: wait load: %w", err)
	}
	if _, err := p.Eval(fontsReadyJS); err != nil {
		return fmt.Errorf("rodhost: wait fonts: %w", err)
	}
	return nil
}
