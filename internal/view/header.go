package view

import (
	"strings"

	"github.com/kapu/higapro-site/internal/constants"
	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/util"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Logo is the home page header. It fades in once the layout images are loaded.
func Logo(loaded bool) g.Node {
	class := "logo-image"
	if loaded {
		class += " is-visible"
	}
	return Div(
		Class("logo-wrapper"),
		Div(
			Class(class),
			Img(Src(constants.Site.LogoPath), Alt(constants.Site.Name), g.Attr("loading", "eager")),
		),
	)
}

// Hero is the header of a detail page. Nothing is shown until the layout images
// are loaded.
func Hero(person domain.Person, loaded bool) g.Node {
	if !loaded {
		return nil
	}

	imageURL, _ := person.FirstImageURL()
	return Div(
		Class("hero"),
		g.Attr("data-person", person.ID),
		Div(
			Class("hero-image"),
			Img(Src(ImageSrc(imageURL)), Alt(person.Name), g.Attr("loading", "eager")),
		),
		Div(
			Class("hero-detail"),
			H1(Class("hero-name"), g.Text(person.Name)),
			Div(Class("hero-profile"), g.Text(person.Profile)),
			Div(
				Class("hero-links"),
				g.If(person.IriamURL != "", externalLink(person.IriamURL, "IRIAM")),
				g.If(person.TwitterURL != "", externalLink(XURL(person.TwitterURL), "X")),
			),
			g.If(!person.Debut.IsZero(), Div(Class("hero-debut"), g.Text(DebutLabel(person)))),
		),
	)
}

func externalLink(href, label string) g.Node {
	return A(Class("hero-link"), Href(href), Target("_blank"), Rel("noopener noreferrer"), Span(g.Text(label)))
}

// XURL rewrites the first "twitter" in a profile link to "x".
func XURL(twitterURL string) string {
	return strings.Replace(twitterURL, "twitter", "x", 1)
}

func DebutLabel(person domain.Person) string {
	return "デビュー日：" + util.FormatJST(person.Debut, "2006.1.2")
}

// RenderString renders n to HTML. A nil node renders as the empty string.
func RenderString(n g.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	var b strings.Builder
	if err := n.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
