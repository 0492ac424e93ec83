package ui

import (
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"chdash/domain/subject"
	"chdash/internal/analysis"
	"chdash/internal/dashboard"
	"chdash/internal/errors"

	"github.com/gin-gonic/gin"
)

type loginPage struct {
	Error string
}

type chartTile struct {
	Name string
	URL  string
	Note template.HTML
}

type genderOption struct {
	Gender   subject.Gender
	Selected bool
}

type dashboardPage struct {
	View        *dashboard.View
	Genders     []genderOption
	RiskFactors []analysis.RiskFactor
	TopCharts   []chartTile
	RiskCharts  []chartTile
	Error       string
	RenderedAt  string
}

func (s *Server) handleLoginPage(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "login.html", loginPage{})
}

func (s *Server) handleLogin(c *gin.Context) {
	token, ok := s.sessions.Login(c.Request.Context(), c.PostForm("password"))
	if !ok {
		s.renderTemplate(c, http.StatusUnauthorized, "login.html", loginPage{Error: "Incorrect password"})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, 0, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleLogout(c *gin.Context) {
	s.sessions.Logout(c.GetString("session"))
	c.SetCookie(sessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) handleDashboard(c *gin.Context) {
	query := c.Request.URL.Query()
	view, err := s.dashboard.Compute(c.Request.Context(), query)
	if err != nil {
		s.log.Warn("Dashboard computation failed: %v", err)
		page := dashboardPage{
			RiskFactors: analysis.RiskFactors(),
			Error:       err.Error(),
		}
		// Keep the gender controls usable after a rejected selection
		if genders, gerr := s.dashboard.Genders(c.Request.Context()); gerr == nil {
			for _, g := range genders {
				page.Genders = append(page.Genders, genderOption{Gender: g})
			}
		}
		s.renderTemplate(c, errors.HTTPStatus(err), "dashboard.html", page)
		return
	}

	charts := dashboard.ChartsFor(view.Result.Filters.Risk)
	page := dashboardPage{
		View:        view,
		RiskFactors: analysis.RiskFactors(),
		TopCharts:   s.tiles(charts[:3], query),
		RiskCharts:  s.tiles(charts[3:], query),
		RenderedAt:  time.Now().Format(time.RFC1123),
	}
	for _, g := range view.Genders {
		page.Genders = append(page.Genders, genderOption{
			Gender:   g,
			Selected: slices.Contains(view.Result.Filters.Genders, g),
		})
	}
	s.renderTemplate(c, http.StatusOK, "dashboard.html", page)
}

func (s *Server) tiles(names []string, query url.Values) []chartTile {
	tiles := make([]chartTile, len(names))
	for i, name := range names {
		u := url.URL{Path: "/charts/" + name + ".png", RawQuery: query.Encode()}
		tiles[i] = chartTile{Name: name, URL: u.String(), Note: s.notes[name]}
	}
	return tiles
}

func (s *Server) handleDashboardAPI(c *gin.Context) {
	view, err := s.dashboard.Compute(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		s.fail(c, err)
		return
	}

	etag := `"` + view.Fingerprint.Short() + `"`
	c.Header("ETag", etag)
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleChart(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("name"), ".png")
	img, contentType, err := s.dashboard.Chart(c.Request.Context(), name, c.Request.URL.Query())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=60")
	c.Data(http.StatusOK, contentType, img)
}

// fail writes err as JSON with the status its code maps to
func (s *Server) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
