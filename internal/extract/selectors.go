package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fieldSelectors holds ordered CSS-selector candidates per posting
// field. Candidates are tried in order and the first match meeting the
// minimum length wins, so site-specific selectors belong before
// generic ones. Kept as data so new selectors can be added without
// touching control flow.
type fieldSelectors struct {
	Title       []string
	Company     []string
	Description []string
}

var linkedinSelectors = fieldSelectors{
	Title: []string{
		".top-card-layout__title",
		".topcard__title",
		"h1.job-title",
		"h1",
	},
	Company: []string{
		".topcard__org-name-link",
		".top-card-layout__second-subline a",
		".topcard__flavor a",
		".topcard__flavor",
	},
	Description: []string{
		".show-more-less-html__markup",
		".description__text",
		".decorated-job-posting__details",
	},
}

var indeedSelectors = fieldSelectors{
	Title: []string{
		"h1.jobsearch-JobInfoHeader-title",
		"[data-testid='jobsearch-JobInfoHeader-title']",
		"h1",
	},
	Company: []string{
		"[data-testid='inlineHeader-companyName']",
		"[data-company-name='true']",
		".jobsearch-CompanyInfoContainer a",
	},
	Description: []string{
		"#jobDescriptionText",
		".jobsearch-JobComponent-description",
	},
}

var glassdoorSelectors = fieldSelectors{
	Title: []string{
		"[data-test='job-title']",
		".JobDetails_jobTitle__Rw_gn",
		"h1",
	},
	Company: []string{
		"[data-test='employer-name']",
		".EmployerProfile_employerName__Xemli",
	},
	Description: []string{
		"[data-test='jobDescriptionContent']",
		".JobDetails_jobDescription__uW_fK",
		"#JobDescriptionContainer",
	},
}

var workopolisSelectors = fieldSelectors{
	Title:       []string{"h1.ViewJobHeader-title", "h1"},
	Company:     []string{".ViewJobHeader-company", ".viewjob-labelWithIcon.viewjob-company"},
	Description: []string{"#job-description", ".viewjob-description"},
}

var genericSelectors = fieldSelectors{
	Title: []string{
		"h1[class*='job']",
		"h1[class*='title']",
		"[class*='job-title']",
		"[class*='jobTitle']",
		"h1",
	},
	Company: []string{
		"[class*='company-name']",
		"[class*='companyName']",
		"[class*='employer']",
		"[itemprop='hiringOrganization']",
	},
	Description: []string{
		"[class*='job-description']",
		"[class*='jobDescription']",
		"[class*='description']",
		"[id*='description']",
		"article",
		"main",
	},
}

// siteSelectors routes Tier 1 to site-specific candidate lists before
// the generic ones, keyed by a host fragment.
var siteSelectors = map[string]fieldSelectors{
	"linkedin.com":   linkedinSelectors,
	"indeed.com":     indeedSelectors,
	"glassdoor":      glassdoorSelectors,
	"workopolis.com": workopolisSelectors,
}

// selectorsForHost returns the site-specific candidate list for a
// host, if one exists.
func selectorsForHost(host string) (fieldSelectors, bool) {
	host = strings.ToLower(host)
	for fragment, sels := range siteSelectors {
		if strings.Contains(host, fragment) {
			return sels, true
		}
	}
	return fieldSelectors{}, false
}

// firstMatch returns the text of the first candidate selector whose
// match meets minLen. HTML inside the matched node is flattened to
// plain text.
func firstMatch(doc *goquery.Document, candidates []string, minLen int) string {
	for _, sel := range candidates {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		text := CollapseWhitespace(node.Text())
		if len(text) >= minLen {
			return text
		}
	}
	return ""
}

// firstMatchHTML is firstMatch but preserves the matched node's inner
// HTML so callers can run it through StripHTML, keeping list structure.
func firstMatchHTML(doc *goquery.Document, candidates []string, minLen int) string {
	for _, sel := range candidates {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		inner, err := node.Html()
		if err != nil {
			continue
		}
		text := StripHTML(inner)
		if len(text) >= minLen {
			return text
		}
	}
	return ""
}
