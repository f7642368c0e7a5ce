package server

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/kapu/higapro-site/internal/contact"
	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/roster"
	"github.com/kapu/higapro-site/internal/util"
	"github.com/kapu/higapro-site/internal/view"
	"github.com/kapu/higapro-site/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

const csrfField = "csrf_token"

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderHome(w, r, view.ContactData{}, nil)
}

// renderHome fetches everything the home page shows and renders it with the
// given contact form state.
func (s *Server) renderHome(w http.ResponseWriter, r *http.Request, form view.ContactData, toast *contact.Notification) {
	start := time.Now()

	nav, err := parseNavigation(r.URL.Query())
	if err != nil {
		s.fail(w, r, "home", start, err)
		return
	}

	var (
		posts   []domain.News
		people  []domain.Person
		marquee []domain.Person
	)
	p := pool.New().WithContext(r.Context()).WithCancelOnError()
	p.Go(func(ctx context.Context) (err error) {
		posts, err = s.content.LatestNews(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		people, err = s.content.Roster(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		marquee, err = s.content.Marquee(ctx)
		return err
	})
	if err := p.Wait(); err != nil {
		s.fail(w, r, "home", start, err)
		return
	}

	talents, err := buildRoster(people, domain.KindTalent, nav.Selection)
	if err != nil {
		s.fail(w, r, "home", start, err)
		return
	}
	managers, err := buildRoster(people, domain.KindManager, nav.Selection)
	if err != nil {
		s.fail(w, r, "home", start, err)
		return
	}

	images := withImages(marquee)
	session := s.sessions.Open(len(images))
	session.Store.Mount("home").Follow(view.Logo)

	form.CSRFField = s.csrfInput(r)
	page := view.Layout(view.PageConfig{
		OnHome:    true,
		SessionID: session.ID,
		Header:    session.Store.Read(),
		Marquee:   images,
		Toast:     toast,
	}, view.Home(view.HomeData{
		News:     s.news.Present(posts, nav.NewsID),
		Talents:  talents,
		Managers: managers,
		Contact:  form,
	}))

	s.render(w, r, "home", start, http.StatusOK, page)
}

// buildRoster returns nil for a kind without people.
func buildRoster(people []domain.Person, kind domain.Kind, sel roster.Selection) (*roster.Roster, error) {
	built, err := roster.Build(domain.FilterKind(people, kind), kind, sel)
	if stderrors.Is(err, roster.ErrEmptyRoster) {
		return nil, nil
	}
	return built, err
}

func (s *Server) handleDetail(kind domain.Kind) http.HandlerFunc {
	page := string(kind)
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		personID := chi.URLParam(r, "personId")

		nav, err := parseNavigation(r.URL.Query())
		if err != nil {
			s.fail(w, r, page, start, err)
			return
		}

		var (
			person  *domain.Person
			people  []domain.Person
			marquee []domain.Person
		)
		p := pool.New().WithContext(r.Context()).WithCancelOnError()
		p.Go(func(ctx context.Context) (err error) {
			person, err = s.content.Person(ctx, personID)
			return err
		})
		p.Go(func(ctx context.Context) (err error) {
			people, err = s.content.Roster(ctx)
			return err
		})
		p.Go(func(ctx context.Context) (err error) {
			marquee, err = s.content.Marquee(ctx)
			return err
		})
		if err := p.Wait(); err != nil {
			s.fail(w, r, page, start, err)
			return
		}

		if len(person.Images) == 0 {
			s.fail(w, r, page, start, errors.NewInputError("images not found", "images", http.StatusInternalServerError))
			return
		}

		rail, err := roster.BuildAround(domain.FilterKind(people, kind), kind, personID, nav.Selection)
		if err != nil {
			if stderrors.Is(err, roster.ErrPersonNotFound) {
				err = errors.NewInputError(page+" not found", "personId", http.StatusNotFound)
			}
			s.fail(w, r, page, start, err)
			return
		}

		images := withImages(marquee)
		session := s.sessions.Open(len(images))
		viewed := *person
		session.Store.Mount(page).Follow(func(loaded bool) g.Node {
			return view.Hero(viewed, loaded)
		})

		out := view.Layout(view.PageConfig{
			Title:       person.Name,
			Description: util.TruncateString(util.CollapseSpace(person.Profile), 120),
			SessionID:   session.ID,
			Header:      session.Store.Read(),
			Marquee:     images,
		}, view.Detail(view.DetailData{
			Person: viewed,
			Kind:   kind,
			Rail:   rail,
		}))

		s.render(w, r, page, start, http.StatusOK, out)
	}
}

// withImages keeps the people that have an image, in random order.
func withImages(people []domain.Person) []domain.Person {
	out := make([]domain.Person, 0, len(people))
	for _, person := range people {
		if _, ok := person.FirstImageURL(); ok {
			out = append(out, person)
		}
	}
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func (s *Server) csrfInput(r *http.Request) g.Node {
	if s.cfg.CSRFKey == "" {
		return nil
	}
	return h.Input(h.Type("hidden"), h.Name(csrfField), h.Value(csrf.Token(r)))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, start time.Time, status int, node g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := node.Render(w); err != nil {
		s.logger.Error("Failed to render page",
			zap.String("page", page),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	if s.metrics != nil {
		s.metrics.ObservePage(page, status, start)
	}
}

// fail aborts a page render with the error page matching err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, page string, start time.Time, err error) {
	status := errors.StatusOf(err)
	logFn := s.logger.Error
	if status < http.StatusInternalServerError {
		logFn = s.logger.Warn
	}
	logFn("Page render aborted",
		zap.String("page", page),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Any("context", errors.ContextOf(err)),
		zap.Error(err),
	)
	s.render(w, r, page, start, status, view.ErrorPage(status))
}
