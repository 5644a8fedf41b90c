package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceTypes maps config names, singular or plural, to CDP types.
var resourceTypes = map[string]proto.NetworkResourceType{
	"image":       proto.NetworkResourceTypeImage,
	"images":      proto.NetworkResourceTypeImage,
	"font":        proto.NetworkResourceTypeFont,
	"fonts":       proto.NetworkResourceTypeFont,
	"media":       proto.NetworkResourceTypeMedia,
	"stylesheet":  proto.NetworkResourceTypeStylesheet,
	"stylesheets": proto.NetworkResourceTypeStylesheet,
}

// blockTypes resolves config names; unknown names are ignored.
func blockTypes(names []string) []proto.NetworkResourceType {
	seen := make(map[proto.NetworkResourceType]bool, len(names))
	var out []proto.NetworkResourceType
	for _, n := range names {
		t, ok := resourceTypes[strings.ToLower(strings.TrimSpace(n))]
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// blockResources fails every request of the listed types. Other requests
// are not intercepted at all. The caller stops the returned router.
func blockResources(page *rod.Page, names []string) (*rod.HijackRouter, error) {
	router := page.HijackRequests()
	for _, t := range blockTypes(names) {
		if err := router.Add("*", t, func(h *rod.Hijack) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		}); err != nil {
			return nil, err
		}
	}
	go router.Run()
	return router, nil
}
