package markdown

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

// RewriteExternalLinks adds target="_blank" to every anchor in an HTML
// fragment whose href is an absolute http or https URL. The fragment is
// returned untouched when it has no such links.
func RewriteExternalLinks(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("%w: HTML fragment: %v", utils.ErrParsing, err)
	}

	rewritten := 0
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if isExternalURL(href) {
			link.SetAttr("target", "_blank")
			rewritten++
		}
	})
	if rewritten == 0 {
		return fragment, nil
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("%w: HTML fragment: %v", utils.ErrParsing, err)
	}
	return out, nil
}

func isExternalURL(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
