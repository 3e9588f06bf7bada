package webapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"publisher-platform/models"
)

// ArticleClient talks to the content API over HTTP, attaching the
// session's bearer token to every request.
type ArticleClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewArticleClient(baseURL string, timeout time.Duration) *ArticleClient {
	return &ArticleClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *ArticleClient) List(token string) ([]models.Article, error) {
	var articles []models.Article
	if err := c.do(http.MethodGet, "/articles", token, nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (c *ArticleClient) Get(id uint, token string) (*models.Article, error) {
	var article models.Article
	if err := c.do(http.MethodGet, fmt.Sprintf("/articles/%d", id), token, nil, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

func (c *ArticleClient) Create(req models.ArticleRequest, token string) error {
	return c.do(http.MethodPost, "/articles", token, req, nil)
}

func (c *ArticleClient) Update(id uint, req models.ArticleRequest, token string) error {
	return c.do(http.MethodPut, fmt.Sprintf("/articles/%d", id), token, req, nil)
}

// Delete returns the API's error body verbatim on failure: the 403
// diagnostic naming caller, owner and roles is shown to the user.
func (c *ArticleClient) Delete(id uint, token string) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/articles/%d", id), token, nil, nil)
}

func (c *ArticleClient) Comments(articleID uint, token string) ([]models.Opinion, error) {
	var opinions []models.Opinion
	if err := c.do(http.MethodGet, fmt.Sprintf("/articles/%d/comments", articleID), token, nil, &opinions); err != nil {
		return nil, err
	}
	return opinions, nil
}

func (c *ArticleClient) AddComment(articleID uint, req models.OpinionRequest, token string) error {
	return c.do(http.MethodPost, fmt.Sprintf("/articles/%d/comments", articleID), token, req, nil)
}

func (c *ArticleClient) do(method, path, token string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s", apiError(raw))
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}
