package view

import (
	"net/url"

	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/roster"
	g "maragu.dev/gomponents"
)

// DetailData is the body of a talent or manager page: the related rail around
// the viewed person.
type DetailData struct {
	Person domain.Person
	Kind   domain.Kind
	Rail   *roster.Roster
}

func Detail(data DetailData) g.Node {
	base := "/" + data.Kind.PathSegment() + "/" + url.PathEscape(data.Person.ID)
	return rosterArticle(data.Kind, data.Rail, func(key string) string {
		return base + "?" + url.Values{"debut": {key}}.Encode() + "#" + string(data.Kind)
	})
}
