package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blockable maps CDP resource types to configuration names. Fonts and
// stylesheets are absent: embedding detection needs them loaded.
var blockable = map[proto.NetworkResourceType]string{
	proto.NetworkResourceTypeImage: "images",
	proto.NetworkResourceTypeMedia: "media",
	proto.NetworkResourceTypePing:  "pings",
}

// blockSet normalises configured names and drops the ones that may not be
// blocked.
func blockSet(types []string) map[string]bool {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		switch t {
		case "", "fonts", "font", "stylesheets", "stylesheet":
			continue
		}
		set[t] = true
	}
	return set
}

func shouldBlock(set map[string]bool, rt proto.NetworkResourceType) bool {
	name, ok := blockable[rt]
	return ok && set[name]
}

// blockResources fails requests for the configured resource types.
func blockResources(page *rod.Page, types []string) {
	set := blockSet(types)
	if len(set) == 0 {
		return
	}
	router := page.HijackRequests()
	router.MustAdd("*", func(h *rod.Hijack) {
		if shouldBlock(set, h.Request.Type()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
}
