package server

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/pkg/errors"
	"go.uber.org/zap"
)

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "# *\nUser-agent: *\nAllow: /\n\n# Host\nHost: %s\n\n# Sitemaps\nSitemap: %s/sitemap.xml\n",
		s.cfg.SiteURL, s.cfg.SiteURL)
}

// handleSitemap lists the home page and every talent and manager page.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	people, err := s.content.Roster(r.Context())
	if err != nil {
		s.logger.Error("Sitemap roster fetch failed", zap.Error(err))
		http.Error(w, http.StatusText(errors.StatusOf(err)), errors.StatusOf(err))
		return
	}

	lastMod := time.Now().UTC().Format(time.RFC3339)
	entry := func(p string) sitemapURL {
		return sitemapURL{Loc: s.cfg.SiteURL + p, LastMod: lastMod, ChangeFreq: "daily", Priority: "0.7"}
	}

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, entry("/"))
	for _, kind := range []domain.Kind{domain.KindTalent, domain.KindManager} {
		for _, person := range domain.FilterKind(people, kind) {
			set.URLs = append(set.URLs, entry("/"+kind.PathSegment()+"/"+url.PathEscape(person.ID)))
		}
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		s.logger.Error("Sitemap encode failed", zap.Error(err))
	}
}

// handleStatic serves files from the public directory and renders the 404 page
// for everything else.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		name := path.Clean("/" + r.URL.Path)
		full := filepath.Join(s.cfg.PublicDir, filepath.FromSlash(name))
		if info, err := os.Stat(full); err == nil && !info.IsDir() && !strings.HasPrefix(path.Base(name), ".") {
			http.ServeFile(w, r, full)
			return
		}
	}
	s.fail(w, r, "not_found", time.Now(), errors.NewInputError("page not found", "path", http.StatusNotFound))
}
