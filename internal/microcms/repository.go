package microcms

import (
	"context"
	"time"

	"github.com/kapu/higapro-site/internal/constants"
	"github.com/kapu/higapro-site/internal/domain"
)

// Repository holds the queries the site pages issue.
type Repository struct {
	client     *Client
	revalidate time.Duration
}

func NewRepository(client *Client, revalidate time.Duration) *Repository {
	return &Repository{client: client, revalidate: revalidate}
}

// LatestNews returns the newest news items for the home page.
func (r *Repository) LatestNews(ctx context.Context) ([]domain.News, error) {
	resp, err := GetList[domain.News](ctx, r.client, constants.CMSEndpoints.News, ListQuery{
		Fields:     []string{"content", "createdAt", "id", "title"},
		Limit:      constants.ListLimits.HomeNews,
		Revalidate: r.revalidate,
	})
	if err != nil {
		return nil, err
	}
	return resp.Contents, nil
}

// Roster returns every talents-endpoint record (talents and managers).
func (r *Repository) Roster(ctx context.Context) ([]domain.Person, error) {
	resp, err := GetList[domain.Person](ctx, r.client, constants.CMSEndpoints.Talents, ListQuery{
		Fields:     []string{"debut", "furigana", "id", "images", "name", "type"},
		Limit:      constants.ListLimits.Roster,
		Revalidate: r.revalidate,
	})
	if err != nil {
		return nil, err
	}
	return resp.Contents, nil
}

// Marquee returns the records that have at least one image, for the layout chrome.
func (r *Repository) Marquee(ctx context.Context) ([]domain.Person, error) {
	resp, err := GetList[domain.Person](ctx, r.client, constants.CMSEndpoints.Talents, ListQuery{
		Fields:     []string{"id", "images"},
		Filters:    "images[exists]",
		Limit:      constants.ListLimits.Roster,
		Revalidate: r.revalidate,
	})
	if err != nil {
		return nil, err
	}
	return resp.Contents, nil
}

// Person returns one detail record.
func (r *Repository) Person(ctx context.Context, id string) (*domain.Person, error) {
	return GetDetail[domain.Person](ctx, r.client, constants.CMSEndpoints.Talents, id, DetailQuery{
		Fields:     []string{"debut", "furigana", "id", "images", "iriamUrl", "name", "profile", "twitterUrl", "type"},
		Revalidate: r.revalidate,
	})
}
