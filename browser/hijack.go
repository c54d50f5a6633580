package browser

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var resourceTypes = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
}

// beaconHosts are telemetry endpoints profile pages fire on every scroll.
// Blocking them keeps the DOM-stable wait short.
var beaconHosts = map[string]struct{}{
	"doubleclick.net":       {},
	"google-analytics.com":  {},
	"googletagmanager.com":  {},
	"ads.linkedin.com":      {},
	"px.ads.linkedin.com":   {},
	"snap.licdn.com":        {},
	"platform.linkedin.com": {},
	"bat.bing.com":          {},
	"connect.facebook.net":  {},
	"hotjar.com":            {},
}

func isBeaconHost(host string) bool {
	host = strings.ToLower(host)
	for host != "" {
		if _, ok := beaconHosts[host]; ok {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			return false
		}
		host = host[i+1:]
	}
	return false
}

// setupHijack intercepts every request of the session page, failing the
// blocked resource types and beacon hosts. Scripts and documents always
// pass: the search boxes and result lists are rendered client-side.
func setupHijack(page *rod.Page, blockedTypes []string) *rod.HijackRouter {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := resourceTypes[name]; ok {
			blocked[rt] = struct{}{}
		}
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if _, drop := blocked[h.Request.Type()]; drop {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if u, err := url.Parse(h.Request.URL().String()); err == nil && isBeaconHost(u.Hostname()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// Run blocks until Stop.
	go router.Run()

	return router
}
