package extract

import (
	"regexp"
	"strings"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are removed from documents before full-page text
// extraction: chrome, navigation, and consent banners that would
// otherwise drown out the posting text.
var noiseSelectors = []string{
	"script",
	"style",
	"noscript",
	"nav",
	"header",
	"footer",
	"iframe",
	"#onetrust-consent-sdk",
	"#onetrust-banner-sdk",
	"[id*='cookie-banner']",
	"[class*='cookie-banner']",
	"[class*='cookie-consent']",
	"[class*='CookieConsent']",
	"[aria-label='cookieconsent']",
}

// boilerplateFilters strip known cookie/privacy phrases that survive
// element removal because sites inline them into body text.
var boilerplateFilters = []*regexp.Regexp{
	regexp.MustCompile(`(?i)we use cookies[^.]*\.`),
	regexp.MustCompile(`(?i)this (web)?site uses cookies[^.]*\.`),
	regexp.MustCompile(`(?i)by (continuing|clicking)[^.]*\byou (agree|accept|consent)[^.]*\.`),
	regexp.MustCompile(`(?i)accept (all )?cookies`),
	regexp.MustCompile(`(?i)manage (cookie )?preferences`),
	regexp.MustCompile(`(?i)cookie (policy|settings|notice)`),
	regexp.MustCompile(`(?i)this site is protected by recaptcha[^.]*\.`),
	regexp.MustCompile(`(?i)privacy policy and terms of service apply\.?`),
}

var whitespaceRe = regexp.MustCompile(`[ \t]{2,}`)
var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// StripHTML converts an HTML fragment to readable plain text. It
// prefers the markdown converter so lists and paragraphs keep their
// structure, falling back to bare node text when conversion fails.
func StripHTML(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	if !strings.Contains(fragment, "<") {
		return CollapseWhitespace(fragment)
	}

	converter := htmlmd.NewConverter("", true, nil)
	if md, err := converter.ConvertString(fragment); err == nil {
		return CollapseWhitespace(md)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CollapseWhitespace(fragment)
	}
	return CollapseWhitespace(doc.Text())
}

// FullPageText strips noise elements and returns the remaining body
// text. Used as the last selector fallback when candidate selectors
// come up short.
func FullPageText(doc *goquery.Document) string {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return CollapseWhitespace(doc.Text())
	}
	return CollapseWhitespace(body.Text())
}

// CleanBoilerplate applies the post-extraction phrase filters.
func CleanBoilerplate(text string) string {
	for _, re := range boilerplateFilters {
		text = re.ReplaceAllString(text, "")
	}
	return CollapseWhitespace(text)
}

// CollapseWhitespace normalizes runs of spaces and blank lines while
// preserving paragraph breaks.
func CollapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " "))
	}
	out := strings.Join(lines, "\n")
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
