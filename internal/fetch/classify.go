package fetch

import (
	"net/http"
	"strings"
)

// Titles of interstitial challenge pages.
var blockedTitles = []string{
	"just a moment",
	"attention required",
	"access denied",
	"are you a robot",
	"security check",
	"verify you are human",
	"pardon our interruption",
}

// Markup fingerprints of bot walls. Only trusted on pages with little text,
// since plenty of real sites embed a captcha in a contact form.
var blockedMarkers = []string{
	"cf-browser-verification",
	"cf_chl_",
	"challenge-platform",
	"captcha-delivery",
	"px-captcha",
	"g-recaptcha",
	"h-captcha",
}

const challengeTextLimit = 1500

type verdict int

const (
	verdictOK verdict = iota
	verdictBlocked
	verdictTransient
	verdictFailed
)

func classifyStatus(code int) verdict {
	switch {
	case code == 0 || code < 400:
		return verdictOK
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		code == http.StatusProxyAuthRequired, code == http.StatusTooManyRequests,
		code == http.StatusServiceUnavailable:
		return verdictBlocked
	case code >= 500:
		return verdictTransient
	default:
		return verdictFailed
	}
}

// looksBlocked inspects an apparently successful page for a challenge wall.
func looksBlocked(html, text string) bool {
	title := strings.ToLower(Title(html))
	for _, t := range blockedTitles {
		if strings.Contains(title, t) {
			return true
		}
	}
	if len(text) > challengeTextLimit {
		return false
	}
	lower := strings.ToLower(html)
	for _, m := range blockedMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
