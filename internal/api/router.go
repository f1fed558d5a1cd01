package api

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qthwatch/qthfeeds/internal/cache"
	"github.com/qthwatch/qthfeeds/internal/feed"
	"github.com/qthwatch/qthfeeds/internal/fetch"
	"github.com/qthwatch/qthfeeds/internal/scraper"
)

const atomContentType = "application/atom+xml; charset=utf-8"

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>QTH Classifieds Feeds</title></head>
<body>
<h1>QTH Classifieds Feeds</h1>
<ul>
{{- range . }}
<li><a href="{{ .Href }}">{{ .Title }}</a></li>
{{- end }}
</ul>
</body>
</html>
`))

type Server struct {
	scraper *scraper.Scraper
	store   cache.Store
	builder *feed.Builder
}

func NewServer(s *scraper.Scraper, store cache.Store, builder *feed.Builder) *Server {
	return &Server{scraper: s, store: store, builder: builder}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(indexTemplate)

	r.GET("/", s.index)
	r.GET("/feeds.txt", s.feedsTxt)
	r.GET("/feed/*file", s.categoryFeed)
	r.GET("/search/:keyword", s.searchFeed)
	r.GET("/cache", s.cacheInfo)
	r.GET("/health", s.health)
}

type indexEntry struct {
	Title string
	Href  string
}

// categories is re-derived on every request: each scrape returns a fresh
// snapshot and the response cache absorbs the repeat origin traffic.
func (s *Server) categories(c *gin.Context) (map[string]scraper.Category, bool) {
	cats, err := s.scraper.Categories()
	if err != nil {
		s.renderError(c, err)
		return nil, false
	}
	return cats, true
}

func sortedTitles(cats map[string]scraper.Category) []string {
	titles := make([]string, 0, len(cats))
	for title := range cats {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

func (s *Server) index(c *gin.Context) {
	cats, ok := s.categories(c)
	if !ok {
		return
	}

	entries := make([]indexEntry, 0, len(cats))
	for _, title := range sortedTitles(cats) {
		entries = append(entries, indexEntry{
			Title: title,
			Href:  "/feed/" + url.PathEscape(title) + ".xml",
		})
	}
	c.HTML(http.StatusOK, "index", entries)
}

func (s *Server) feedsTxt(c *gin.Context) {
	cats, ok := s.categories(c)
	if !ok {
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	var b strings.Builder
	for _, title := range sortedTitles(cats) {
		b.WriteString(scheme + "://" + c.Request.Host + "/feed/" + url.PathEscape(title) + ".xml\n")
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}

func (s *Server) categoryFeed(c *gin.Context) {
	file := strings.TrimPrefix(c.Param("file"), "/")
	if !strings.HasSuffix(file, ".xml") {
		s.notFound(c)
		return
	}
	title := strings.TrimSuffix(file, ".xml")

	cats, ok := s.categories(c)
	if !ok {
		return
	}
	cat, ok := cats[title]
	if !ok {
		// scraper.ErrUnknownCategory: a client error, not a server fault
		s.notFound(c)
		return
	}

	listings, err := s.scraper.CategoryListings(cat)
	if err != nil {
		s.renderError(c, err)
		return
	}

	info := feed.CategoryInfo(cat, s.scraper.AbsoluteURL(cat.URL))
	s.renderAtom(c, info, listings)
}

func (s *Server) searchFeed(c *gin.Context) {
	keyword := c.Param("keyword")

	listings, err := s.scraper.Search(keyword)
	if err != nil {
		s.renderError(c, err)
		return
	}

	info := feed.SearchInfo(keyword, s.scraper.SearchURL(keyword))
	s.renderAtom(c, info, listings)
}

func (s *Server) renderAtom(c *gin.Context, info feed.Info, listings []scraper.Listing) {
	xml, err := feed.Atom(s.builder.Build(info, listings))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, atomContentType, []byte(xml))
}

func (s *Server) cacheInfo(c *gin.Context) {
	count, err := s.store.Count()
	if err != nil {
		s.renderError(c, err)
		return
	}
	urls, err := s.store.URLs()
	if err != nil {
		s.renderError(c, err)
		return
	}
	if urls == nil {
		urls = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count": count,
		"urls":  urls,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"code":    "not_found",
		"message": scraper.ErrUnknownCategory.Error(),
	})
}

// renderError maps scrape failures onto HTTP statuses: anything broken
// upstream (transport, HTTP status, changed page layout) is a bad
// gateway; the rest is an internal error.
func (s *Server) renderError(c *gin.Context, err error) {
	var fe *fetch.FetchError
	var se *scraper.StructureError
	if errors.As(err, &fe) || errors.As(err, &se) {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    "upstream_error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}
