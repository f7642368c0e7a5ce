package view

import (
	"net/url"

	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/news"
	"github.com/kapu/higapro-site/internal/roster"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type HomeData struct {
	News     []news.Item
	Talents  *roster.Roster
	Managers *roster.Roster
	Contact  ContactData
}

func Home(data HomeData) g.Node {
	return g.Group([]g.Node{
		article("about", "pattern-diagonal-stripes",
			P(
				g.Text("Higa Production（ヒガプロダクション）は、"),
				Br(),
				g.Text("Vライバー配信アプリIRIAM（イリアム）のVライバー事務所です。"),
			),
		),
		article("news", "pattern-checks", newsList(data.News)),
		rosterArticle(domain.KindTalent, data.Talents, func(key string) string { return homeCohortHref(key, domain.KindTalent) }),
		rosterArticle(domain.KindManager, data.Managers, func(key string) string { return homeCohortHref(key, domain.KindManager) }),
		article("contact", "pattern-triangles", ContactForm(data.Contact)),
	})
}

func article(anchor, pattern string, content ...g.Node) g.Node {
	return Article(
		Class("article "+pattern),
		ID(anchor),
		g.Attr("data-article", anchor),
		Div(
			Class("inner"),
			Div(Class("h2-wrapper"), H2(Class("h2"), g.Text(headingOf(anchor)))),
			Div(Class("content"), g.Group(content)),
		),
	)
}

func headingOf(anchor string) string {
	for _, s := range sections {
		if s.Anchor == anchor {
			return s.Title
		}
	}
	return anchor
}

func newsList(items []news.Item) g.Node {
	return Ul(
		Class("news-list"),
		g.Map(items, func(item news.Item) g.Node {
			href := "/?" + url.Values{"newsId": {item.ID}}.Encode() + "#news"
			class := "news-item"
			if item.Expanded {
				href = "/#news"
				class += " is-expanded"
			}
			return Li(
				Class(class),
				A(
					Class("news-link"),
					Href(href),
					Div(Class("news-date"), g.Text(item.Date)),
					Div(g.Text(item.Title)),
				),
				g.If(item.Expanded, Div(Class("news-content"), g.Raw(item.Content))),
			)
		}),
	)
}

func homeCohortHref(key string, kind domain.Kind) string {
	return "/?" + url.Values{"debut": {key}, "type": {string(kind)}}.Encode() + "#" + string(kind)
}

// rosterArticle renders the cohort tabs and member cards of one roster. A nil
// roster (no people of that kind) renders the heading only.
func rosterArticle(kind domain.Kind, r *roster.Roster, cohortHref func(key string) string) g.Node {
	if r == nil {
		return article(string(kind), "pattern-zigzag")
	}
	return article(string(kind), "pattern-zigzag",
		cohortTabs(r.Cohorts, cohortHref),
		memberCards(kind, r.Members),
	)
}

func cohortTabs(cohorts []roster.Cohort, cohortHref func(key string) string) g.Node {
	return Ul(
		Class("cohort-list"),
		g.Map(cohorts, func(c roster.Cohort) g.Node {
			class := "cohort-link"
			if c.Active {
				class += " is-active"
			}
			return Li(Class("cohort-item"), A(Class(class), Href(cohortHref(c.Key)), g.Text(c.Label)))
		}),
	)
}

func memberCards(kind domain.Kind, cards []roster.Card) g.Node {
	return Ul(
		Class("member-list"),
		g.Map(cards, func(card roster.Card) g.Node {
			fit := "cover"
			if !card.HasImage() {
				fit = "contain"
			}
			return Li(
				Class("member-item"),
				A(
					Href("/"+kind.PathSegment()+"/"+url.PathEscape(card.ID)+"#top"),
					Div(Class("member-name"), g.Text(card.Name)),
					Div(
						Class("member-image"),
						Img(Src(ImageSrc(card.ImageURL)), Alt(card.Name), g.Attr("style", "object-fit: "+fit)),
					),
					Div(Class("member-furigana"), g.Text(card.Furigana)),
				),
			)
		}),
	)
}
