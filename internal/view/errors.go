package view

import (
	"net/http"

	"github.com/kapu/higapro-site/internal/header"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// ErrorPage is a standalone page so that it renders even when the CMS is down.
func ErrorPage(status int) g.Node {
	message := "エラーが発生しました"
	switch status {
	case http.StatusNotFound:
		message = "ページが見つかりません"
	case http.StatusBadRequest:
		message = "リクエストが正しくありません"
	}

	return Layout(PageConfig{Title: http.StatusText(status), Header: header.Snapshot{Loaded: true}},
		Article(
			Class("article error"),
			Div(
				Class("inner"),
				H2(Class("h2"), g.Textf("%d", status)),
				P(g.Text(message)),
				A(Href("/"), g.Text("TOP")),
			),
		),
	)
}
