package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"publisher-platform/helper"
	"publisher-platform/middleware"
	"publisher-platform/models"
	"publisher-platform/services"
)

type ArticleHandler struct {
	articleService services.ArticleService
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, h *helper.HTTPHelper) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, Helper: h}
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	articles, err := h.articleService.GetArticles()
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, articles)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}

	article, err := h.articleService.GetArticle(id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, article)
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		h.Helper.SendUnauthorized(c, "authentication required")
		return
	}

	var req models.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "invalid request body")
		return
	}
	if !h.Helper.ValidateStruct(c, req) {
		return
	}

	article, err := h.articleService.CreateArticle(req, caller)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendCreated(c, article)
}

func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		h.Helper.SendUnauthorized(c, "authentication required")
		return
	}

	id, ok := h.articleID(c)
	if !ok {
		return
	}

	var req models.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "invalid request body")
		return
	}
	if !h.Helper.ValidateStruct(c, req) {
		return
	}

	article, err := h.articleService.UpdateArticle(id, req, caller)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, article)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		h.Helper.SendUnauthorized(c, "authentication required")
		return
	}

	id, ok := h.articleID(c)
	if !ok {
		return
	}

	if err := h.articleService.DeleteArticle(id, caller); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, gin.H{"message": "article deleted"})
}

func (h *ArticleHandler) GetComments(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}

	opinions, err := h.articleService.GetOpinions(id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, opinions)
}

func (h *ArticleHandler) AddComment(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}

	var req models.OpinionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "invalid request body")
		return
	}
	if !h.Helper.ValidateStruct(c, req) {
		return
	}

	opinion, err := h.articleService.AddOpinion(id, req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendCreated(c, opinion)
}

func (h *ArticleHandler) articleID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.Helper.SendBadRequest(c, "invalid article id")
		return 0, false
	}
	return uint(id), true
}
