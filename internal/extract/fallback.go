package extract

import (
	"regexp"
	"strings"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/util"
)

var (
	emailRe    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe    = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`)
	intlRe     = regexp.MustCompile(`\+[0-9]{1,3}[-.\s]?(?:\(?[0-9]{1,4}\)?[-.\s]?){2,4}[0-9]{2,4}\b`)
	linkedinRe = regexp.MustCompile(`https?://(?:[a-z]{2,3}\.)?linkedin\.com/(?:company|in)/[A-Za-z0-9_%-]+`)
	socialRe   = regexp.MustCompile(`https?://(?:www\.)?(?:twitter\.com|x\.com|facebook\.com|instagram\.com|youtube\.com)/[A-Za-z0-9_.@/-]+`)
	foundedRe  = regexp.MustCompile(`(?i)\b(?:founded|established|since|est\.)\s*(?:in\s*)?((?:18|19|20)[0-9]{2})\b`)
	sizeRe     = regexp.MustCompile(`(?i)\b([0-9][0-9,]*\+?(?:\s*(?:-|to)\s*[0-9][0-9,]*)?)\s+(?:employees|staff members|team members|people)\b`)
)

// Asset and placeholder addresses that regexes pick up from markup.
var junkEmailSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".js", ".css"}
var junkEmailHosts = []string{"example.com", "example.org", "sentry.io", "wixpress.com", "domain.com"}

const (
	maxEmails      = 3
	maxPhones      = 2
	maxLinkedIn    = 2
	maxSocial      = 4
	descriptionLen = 200
)

// Fallback extracts what plain pattern matching can find. It never fails
// and returns an empty Partial for an empty page.
func Fallback(page domain.RawPage) Partial {
	p := Partial{}
	text := page.Text
	if strings.TrimSpace(text) == "" {
		return p
	}

	p.set(domain.FieldEmail, joinFirst(emails(text), maxEmails))
	p.set(domain.FieldPhone, joinFirst(phones(text), maxPhones))
	p.set(domain.FieldLinkedIn, joinFirst(links(linkedinRe, text), maxLinkedIn))
	p.set(domain.FieldSocialMedia, joinFirst(links(socialRe, text), maxSocial))

	if m := foundedRe.FindStringSubmatch(text); m != nil {
		p.set(domain.FieldFoundedYear, m[1])
	}
	if m := sizeRe.FindStringSubmatch(text); m != nil {
		p.set(domain.FieldCompanySize, strings.Join(strings.Fields(m[1]), " ")+" employees")
	}

	p.set(domain.FieldCompanyName, util.CompanyFromHost(page.URL))
	p.set(domain.FieldDescription, util.Excerpt(util.CleanText(text), descriptionLen))
	return p
}

func emails(text string) []string {
	var out []string
	for _, e := range emailRe.FindAllString(text, -1) {
		le := strings.ToLower(e)
		junk := false
		for _, s := range junkEmailSuffixes {
			if strings.HasSuffix(le, s) {
				junk = true
			}
		}
		for _, h := range junkEmailHosts {
			if strings.HasSuffix(le, "@"+h) {
				junk = true
			}
		}
		if !junk {
			out = append(out, e)
		}
	}
	return out
}

func phones(text string) []string {
	found := phoneRe.FindAllString(text, -1)
	found = append(found, intlRe.FindAllString(text, -1)...)
	var out []string
	for _, ph := range found {
		ph = strings.TrimSpace(ph)
		digits := 0
		for _, r := range ph {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 10 && digits <= 15 {
			out = append(out, ph)
		}
	}
	return out
}

// links finds URLs and drops sentence punctuation glued to their end.
func links(re *regexp.Regexp, text string) []string {
	found := re.FindAllString(text, -1)
	for i, u := range found {
		found[i] = strings.TrimRight(u, ".,;:/")
	}
	return found
}

func joinFirst(xs []string, n int) string {
	xs = util.Dedupe(xs)
	if len(xs) > n {
		xs = xs[:n]
	}
	return strings.Join(xs, ", ")
}
