package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Tab is a page opened for one watched URL.
type Tab struct {
	Page    *rod.Page
	PageURL string
	PageID  string
	Mode    Mode
}

// OpenTab creates a tab and navigates it to pageURL. It returns once the
// navigation has committed, without waiting for the load event, so that
// the caller can start working on a document that is still loading.
func OpenTab(ctx context.Context, mgr *Manager, pageURL, pageID string, mode Mode) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	var (
		page *rod.Page
		err  error
	)
	if mode >= ModeHeadless {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	blockResources(page, mgr.cfg.Block)

	navCtx, cancel := context.WithTimeout(ctx, mgr.cfg.NavigateTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if _, err := page.Context(navCtx).Element("body"); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: wait body %s: %w", pageURL, err)
	}

	return &Tab{Page: page, PageURL: pageURL, PageID: pageID, Mode: mode}, nil
}

// HTML serialises the current document.
func (t *Tab) HTML(ctx context.Context) ([]byte, error) {
	res, err := t.Page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("browser: get DOM: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page == nil {
		return nil
	}
	return t.Page.Close()
}
