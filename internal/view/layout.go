// Package view renders the site's HTML with gomponents.
package view

import (
	"strconv"

	"github.com/kapu/higapro-site/internal/constants"
	"github.com/kapu/higapro-site/internal/contact"
	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/header"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Sections of the home page, in navigation order.
type section struct {
	Title  string
	Anchor string
}

var sections = []section{
	{"TOP", "top"},
	{"ABOUT", "about"},
	{"NEWS", "news"},
	{"TALENT", "talent"},
	{"MANAGER", "manager"},
	{"CONTACT", "contact"},
}

// PageConfig carries what the layout chrome needs besides the page body.
type PageConfig struct {
	Title       string
	Description string
	OnHome      bool
	SessionID   string
	Header      header.Snapshot
	Marquee     []domain.Person
	Toast       *contact.Notification
}

func Layout(cfg PageConfig, children ...g.Node) g.Node {
	title := constants.Site.Title
	if cfg.Title != "" {
		title = cfg.Title + " - " + constants.Site.Title
	}
	description := cfg.Description
	if description == "" {
		description = constants.Site.Description
	}

	return Doctype(
		HTML(
			Lang("ja"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				g.El("title", g.Text(title)),
				Meta(Name("description"), Content(description)),
				Link(Rel("stylesheet"), Href("/assets/site.css")),
			),
			Body(
				g.Attr("data-session", cfg.SessionID),
				Div(
					Class("wrapper"),
					Header(
						Class("header"),
						ID("top"),
						marquee(cfg.Marquee, cfg.Header.Loaded),
						Div(ID("header-slot"), g.If(cfg.Header.Content != nil, cfg.Header.Content)),
					),
					navigation(cfg.OnHome),
					Main(children...),
					footer(),
				),
				loadingOverlay(len(cfg.Marquee), cfg.Header.Loaded),
				toasts(cfg.Toast),
				Script(Src("/assets/site.js"), g.Attr("defer")),
			),
		),
	)
}

func navigation(onHome bool) g.Node {
	return Aside(
		Class("aside"),
		Nav(
			Ul(
				Class("nav-list"),
				g.Map(sections, func(s section) g.Node {
					href := "/#" + s.Anchor
					if onHome {
						href = "#" + s.Anchor
					}
					return Li(A(Class("nav-link"), Href(href), g.Text(s.Title)))
				}),
			),
		),
		A(
			Class("social-link"),
			Href("https://x.com/HIGA_pro_0608"),
			Target("_blank"),
			Rel("noopener noreferrer"),
			g.Text("X"),
		),
	)
}

// marquee renders the scrolling strip of talent images. The strip is drawn twice
// for a seamless loop; both copies report the same indexes.
func marquee(people []domain.Person, loaded bool) g.Node {
	items := make([]g.Node, 0, len(people))
	for i, person := range people {
		url, ok := person.FirstImageURL()
		if !ok {
			continue
		}
		items = append(items, Div(
			Class("marquee-item"),
			Img(
				Class("marquee-image"),
				Src(ImageSrc(url)),
				Alt(person.ID),
				g.Attr("loading", "eager"),
				g.Attr("data-index", strconv.Itoa(i)),
				g.Attr("style", "transition-delay: "+strconv.FormatFloat(0.1*float64(i)+0.75, 'f', 2, 64)+"s"),
			),
		))
	}

	class := "marquee"
	if loaded {
		class += " is-loaded"
	}
	return Div(
		Class(class),
		Div(Class("marquee-track"), g.Group(items)),
		Div(Class("marquee-track"), g.Attr("aria-hidden", "true"), g.Group(items)),
	)
}

func loadingOverlay(total int, loaded bool) g.Node {
	class := "loading"
	if loaded {
		class += " is-loaded"
	}
	return Div(
		Class(class),
		ID("loading"),
		g.Attr("data-total", strconv.Itoa(total)),
		Div(Class("loading-progress"), g.Text(ProgressLabel(0, total))),
	)
}

// ProgressLabel formats the loading percentage shown by the overlay.
func ProgressLabel(loaded, total int) string {
	if total <= 0 {
		return "100%"
	}
	percent := (loaded*100 + total - 1) / total
	return strconv.Itoa(percent) + "%"
}

func footer() g.Node {
	return Footer(
		Class("footer"),
		Img(Src(constants.Site.LogoPath), Alt(constants.Site.Name), g.Attr("width", "320"), g.Attr("height", "320")),
		Div(Class("copyright"), g.Raw("&copy; 2023 合同会社DreamGarage")),
	)
}

func toasts(n *contact.Notification) g.Node {
	var current g.Node
	if n != nil {
		current = Toast(*n)
	}
	return Div(Class("toasts"), ID("toasts"), current)
}

// Toast renders one notification. A positive AutoClose is handed to site.js.
func Toast(n contact.Notification) g.Node {
	return Div(
		Class("toast toast-"+string(n.Kind)),
		g.Attr("role", "status"),
		g.Attr("data-toast", n.ID),
		g.If(n.AutoClose > 0, g.Attr("data-autoclose", strconv.FormatInt(n.AutoClose.Milliseconds(), 10))),
		g.Text(n.Message),
	)
}

// ImageSrc adds the CMS rendition query to image URLs. The local placeholder is
// served as is.
func ImageSrc(url string) string {
	if url == constants.NoImagePath {
		return url
	}
	return url + constants.ImageQuery
}
