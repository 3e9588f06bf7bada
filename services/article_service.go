package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"publisher-platform/models"
	"publisher-platform/repositories"
)

type ArticleService interface {
	GetArticles() ([]models.Article, error)
	GetArticle(id uint) (*models.Article, error)
	CreateArticle(req models.ArticleRequest, caller models.Caller) (*models.Article, error)
	UpdateArticle(id uint, req models.ArticleRequest, caller models.Caller) (*models.Article, error)
	DeleteArticle(id uint, caller models.Caller) error
	AddOpinion(articleID uint, req models.OpinionRequest) (*models.Opinion, error)
	GetOpinions(articleID uint) ([]models.Opinion, error)
}

type articleService struct {
	articleRepo repositories.ArticleRepository
}

func NewArticleService(articleRepo repositories.ArticleRepository) ArticleService {
	return &articleService{articleRepo: articleRepo}
}

func (s *articleService) GetArticles() ([]models.Article, error) {
	return s.articleRepo.GetAll()
}

func (s *articleService) GetArticle(id uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return article, nil
}

// CreateArticle stores a new article. The owner is always the caller's
// resolved identity; any client-supplied value is irrelevant because the
// request shape carries no owner field at all.
func (s *articleService) CreateArticle(req models.ArticleRequest, caller models.Caller) (*models.Article, error) {
	article := &models.Article{
		Title:     req.Title,
		Summary:   req.Summary,
		Author:    req.Author,
		Date:      req.Date,
		CreatedBy: caller.Username,
	}
	if article.Date.IsZero() {
		article.Date = time.Now()
	}

	if err := s.articleRepo.Create(article); err != nil {
		return nil, err
	}
	return s.articleRepo.GetByID(article.ID)
}

// UpdateArticle overwrites every mutable field from the input and then
// restores the stored owner: CreatedBy is immutable after creation.
func (s *articleService) UpdateArticle(id uint, req models.ArticleRequest, caller models.Caller) (*models.Article, error) {
	article, err := s.GetArticle(id)
	if err != nil {
		return nil, err
	}

	if !caller.IsOwnerOrAdmin(article.CreatedBy) {
		return nil, &models.ForbiddenError{User: caller.Username, Owner: article.CreatedBy, Roles: caller.Roles}
	}

	originalCreatedBy := article.CreatedBy

	article.Title = req.Title
	article.Summary = req.Summary
	article.Author = req.Author
	article.Date = req.Date
	article.CreatedBy = originalCreatedBy

	if err := s.articleRepo.Update(article); err != nil {
		return nil, err
	}
	return s.articleRepo.GetByID(article.ID)
}

func (s *articleService) DeleteArticle(id uint, caller models.Caller) error {
	article, err := s.GetArticle(id)
	if err != nil {
		return err
	}

	if !caller.IsOwnerOrAdmin(article.CreatedBy) {
		return &models.ForbiddenError{User: caller.Username, Owner: article.CreatedBy, Roles: caller.Roles}
	}

	// Re-fetch immediately before deleting so the mutation never acts
	// on a stale in-memory copy.
	fresh, err := s.GetArticle(id)
	if err != nil {
		return err
	}

	return s.articleRepo.Delete(fresh)
}

// AddOpinion attaches a comment to an article. The creation timestamp is
// always server time; client-supplied values are discarded.
func (s *articleService) AddOpinion(articleID uint, req models.OpinionRequest) (*models.Opinion, error) {
	if _, err := s.GetArticle(articleID); err != nil {
		return nil, err
	}

	opinion := &models.Opinion{
		ArticleID: articleID,
		Comments:  req.Comments,
		Author:    req.Author,
		CreatedAt: time.Now(),
	}
	if err := s.articleRepo.CreateOpinion(opinion); err != nil {
		return nil, err
	}
	return opinion, nil
}

func (s *articleService) GetOpinions(articleID uint) ([]models.Opinion, error) {
	if _, err := s.GetArticle(articleID); err != nil {
		return nil, err
	}
	return s.articleRepo.GetOpinions(articleID)
}
