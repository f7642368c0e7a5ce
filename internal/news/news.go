// Package news prepares CMS news posts for the home page.
package news

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/util"
	"github.com/microcosm-cc/bluemonday"
)

const dateLayout = "2006.01.02"

// Item is a news post ready for rendering. Content is sanitised HTML.
type Item struct {
	ID       string
	Title    string
	Date     string
	Content  string
	Expanded bool
}

// Presenter turns CMS news into items. siteHost is the host whose links stay in
// the current tab.
type Presenter struct {
	policy   *bluemonday.Policy
	siteHost string
}

func NewPresenter(siteURL string) *Presenter {
	host := ""
	if u, err := url.Parse(siteURL); err == nil {
		host = u.Hostname()
	}
	return &Presenter{
		policy:   bluemonday.UGCPolicy(),
		siteHost: host,
	}
}

// Present maps posts to items. The post whose id equals expandedID is expanded;
// at most one is, since ids are unique.
func (p *Presenter) Present(posts []domain.News, expandedID string) []Item {
	items := make([]Item, len(posts))
	for i, post := range posts {
		items[i] = Item{
			ID:       post.ID,
			Title:    post.Title,
			Date:     util.FormatJST(post.CreatedAt, dateLayout),
			Content:  p.Sanitize(post.Content),
			Expanded: expandedID != "" && post.ID == expandedID,
		}
	}
	return items
}

// Sanitize strips unsafe markup and makes external links open in a new tab.
func (p *Presenter) Sanitize(content string) string {
	clean := p.policy.Sanitize(content)
	if strings.TrimSpace(clean) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return clean
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if p.external(href) {
			s.SetAttr("target", "_blank")
			s.SetAttr("rel", "noopener noreferrer")
		}
	})

	html, err := doc.Find("body").Html()
	if err != nil {
		return clean
	}
	return html
}

func (p *Presenter) external(href string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Hostname() != p.siteHost
}
