package webapp

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"publisher-platform/logger"
	"publisher-platform/models"
)

const pageSize = 3

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// PageHandler serves the server-rendered pages. All state lives in the
// per-browser session; the backends are reached over HTTP only.
type PageHandler struct {
	auth     *AuthClient
	articles *ArticleClient
}

func NewPageHandler(auth *AuthClient, articles *ArticleClient) *PageHandler {
	return &PageHandler{auth: auth, articles: articles}
}

// requireToken redirects to the login page when no token is cached.
// Expired tokens pass this check and surface as 401s from the APIs,
// which redirectIfUnauthenticated turns into the same redirect.
func (h *PageHandler) requireToken(c *gin.Context) (string, bool) {
	token := Token(c)
	if token == "" {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return "", false
	}
	return token, true
}

func (h *PageHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login", gin.H{})
}

func (h *PageHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	token, err := h.auth.Login(username, password)
	if err != nil {
		message := "invalid username or password, please try again"
		if errors.Is(err, ErrUpstreamUnavailable) {
			message = "the authentication service is unavailable, please try again later"
		}
		c.HTML(http.StatusOK, "login", gin.H{"Error": message})
		return
	}

	if err := SetLogin(c, token, username); err != nil {
		logger.Get().Error().Err(err).Msg("failed to persist session")
		c.HTML(http.StatusOK, "login", gin.H{"Error": "could not start a session"})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *PageHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	switch {
	case username == "" || password == "":
		c.HTML(http.StatusOK, "login", gin.H{"Error": "all fields are required"})
		return
	case password != confirm:
		c.HTML(http.StatusOK, "login", gin.H{"Error": "passwords do not match"})
		return
	case len(username) < 3 || !usernamePattern.MatchString(username):
		c.HTML(http.StatusOK, "login", gin.H{"Error": "the username must be at least 3 characters and may only contain letters, numbers and underscores"})
		return
	}

	message, err := h.auth.Register(username, password)
	if err != nil {
		c.HTML(http.StatusOK, "login", gin.H{"Error": err.Error()})
		return
	}

	c.HTML(http.StatusOK, "login", gin.H{"Success": message + ". You can now sign in."})
}

func (h *PageHandler) Logout(c *gin.Context) {
	_ = ClearSession(c)
	c.Redirect(http.StatusFound, "/login")
}

func (h *PageHandler) Index(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	all, err := h.articles.List(token)
	if err != nil {
		h.renderUpstreamFailure(c, "index", err)
		return
	}

	totalPages := int(math.Ceil(float64(len(all)) / float64(pageSize)))
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	c.HTML(http.StatusOK, "index", gin.H{
		"Username":    Username(c),
		"Articles":    all[start:end],
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"HasPrev":     page > 1,
		"HasNext":     page < totalPages,
		"PrevPage":    page - 1,
		"NextPage":    page + 1,
	})
}

func (h *PageHandler) Details(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	id, ok := h.articleID(c)
	if !ok {
		return
	}

	article, err := h.articles.Get(id, token)
	if err != nil {
		h.renderUpstreamFailure(c, "details", err)
		return
	}

	comments, err := h.articles.Comments(id, token)
	if err != nil {
		comments = nil
	}
	// The API returns comments oldest first; the page shows newest first.
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}

	c.HTML(http.StatusOK, "details", gin.H{
		"Username": Username(c),
		"Article":  article,
		"Comments": comments,
	})
}

func (h *PageHandler) AddComment(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	id, ok := h.articleID(c)
	if !ok {
		return
	}

	req := models.OpinionRequest{
		Comments: c.PostForm("content"),
		Author:   Username(c),
	}
	if err := h.articles.AddComment(id, req, token); err != nil {
		if h.redirectIfUnauthenticated(c, err) {
			return
		}
		logger.Get().Warn().Err(err).Uint("article_id", id).Msg("failed to add comment")
	}

	c.Redirect(http.StatusFound, "/articles/"+strconv.FormatUint(uint64(id), 10))
}

func (h *PageHandler) CreatePage(c *gin.Context) {
	if _, ok := h.requireToken(c); !ok {
		return
	}
	c.HTML(http.StatusOK, "create", gin.H{"Username": Username(c)})
}

func (h *PageHandler) Create(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	req := models.ArticleRequest{
		Title:   c.PostForm("title"),
		Summary: c.PostForm("summary"),
		Author:  c.PostForm("author"),
		Date:    time.Now(),
	}
	if req.Title == "" {
		c.HTML(http.StatusOK, "create", gin.H{"Username": Username(c), "Error": "a title is required"})
		return
	}

	if err := h.articles.Create(req, token); err != nil {
		if h.redirectIfUnauthenticated(c, err) {
			return
		}
		c.HTML(http.StatusOK, "create", gin.H{"Username": Username(c), "Error": err.Error()})
		return
	}

	c.Redirect(http.StatusFound, "/articles/manage")
}

func (h *PageHandler) EditPage(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	id, ok := h.articleID(c)
	if !ok {
		return
	}

	article, err := h.articles.Get(id, token)
	if err != nil {
		h.renderUpstreamFailure(c, "edit", err)
		return
	}

	c.HTML(http.StatusOK, "edit", gin.H{"Username": Username(c), "Article": article})
}

func (h *PageHandler) Edit(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	id, ok := h.articleID(c)
	if !ok {
		return
	}

	// Fetch the stored article first so the original publication date
	// survives the edit; the form does not carry it.
	original, err := h.articles.Get(id, token)
	if err != nil {
		h.renderUpstreamFailure(c, "edit", err)
		return
	}

	req := models.ArticleRequest{
		Title:   c.PostForm("title"),
		Summary: c.PostForm("summary"),
		Author:  c.PostForm("author"),
		Date:    original.Date,
	}

	if err := h.articles.Update(id, req, token); err != nil {
		if h.redirectIfUnauthenticated(c, err) {
			return
		}
		c.HTML(http.StatusOK, "edit", gin.H{"Username": Username(c), "Article": original, "Error": err.Error()})
		return
	}

	c.Redirect(http.StatusFound, "/articles/manage")
}

// Manage lists every article with edit/delete controls gated by the
// cached session roles. The gating is advisory; the content API
// re-checks every mutation.
func (h *PageHandler) Manage(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	all, err := h.articles.List(token)
	if err != nil {
		h.renderUpstreamFailure(c, "manage", err)
		return
	}

	username := Username(c)
	roles := Roles(c)

	type row struct {
		Article models.Article
		CanEdit bool
	}
	rows := make([]row, 0, len(all))
	for _, article := range all {
		rows = append(rows, row{Article: article, CanEdit: CanEditOrDelete(username, roles, article)})
	}

	c.HTML(http.StatusOK, "manage", gin.H{
		"Username": username,
		"Rows":     rows,
		"Error":    c.Query("error"),
	})
}

func (h *PageHandler) Delete(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	id, ok := h.articleID(c)
	if !ok {
		return
	}

	if err := h.articles.Delete(id, token); err != nil {
		if h.redirectIfUnauthenticated(c, err) {
			return
		}
		// The 403 body names the caller, the owner and the roles; show
		// it as-is.
		c.Redirect(http.StatusFound, "/articles/manage?error="+url.QueryEscape(err.Error()))
		return
	}

	c.Redirect(http.StatusFound, "/articles/manage")
}

func (h *PageHandler) articleID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.Redirect(http.StatusFound, "/")
		c.Abort()
		return 0, false
	}
	return uint(id), true
}

// redirectIfUnauthenticated handles a backend 401: the cached token is
// stale, so the session is dropped and the browser sent to the login
// page. Returns true when the redirect was written.
func (h *PageHandler) redirectIfUnauthenticated(c *gin.Context, err error) bool {
	if !errors.Is(err, ErrUnauthenticated) {
		return false
	}
	_ = ClearSession(c)
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
	return true
}

func (h *PageHandler) renderUpstreamFailure(c *gin.Context, page string, err error) {
	if h.redirectIfUnauthenticated(c, err) {
		return
	}
	if errors.Is(err, ErrUpstreamUnavailable) {
		logger.Get().Error().Err(err).Str("page", page).Msg("backend unavailable")
		c.HTML(http.StatusOK, page, gin.H{"Username": Username(c), "Error": "the content service is unavailable, please try again later"})
		return
	}
	c.HTML(http.StatusOK, page, gin.H{"Username": Username(c), "Error": err.Error()})
}
