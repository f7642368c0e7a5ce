package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/roster"
	"github.com/kapu/higapro-site/pkg/errors"
)

// navigation holds the optional query parameters of the page routes.
type navigation struct {
	Selection roster.Selection
	NewsID    string
}

// parseNavigation reads debut, type and newsId. Each must be absent or given
// once; a repeated parameter aborts the render. A present but empty debut is a
// selection of the empty cohort, which has no members.
func parseNavigation(query url.Values) (navigation, error) {
	var nav navigation

	debut, hasDebut, err := single(query, "debut")
	if err != nil {
		return nav, err
	}
	kind, _, err := single(query, "type")
	if err != nil {
		return nav, err
	}
	newsID, _, err := single(query, "newsId")
	if err != nil {
		return nav, err
	}

	nav.Selection = roster.Selection{
		Debut:    debut,
		HasDebut: hasDebut,
		Kind:     domain.Kind(kind),
	}
	nav.NewsID = newsID
	return nav, nil
}

func single(query url.Values, key string) (string, bool, error) {
	values, ok := query[key]
	if !ok {
		return "", false, nil
	}
	if len(values) != 1 {
		return "", false, errors.NewInputError(
			fmt.Sprintf("%s must be a single string", key), key, http.StatusBadRequest)
	}
	return values[0], true, nil
}
