package repositories

import (
	"gorm.io/gorm"

	"publisher-platform/models"
)

type ArticleRepository interface {
	Create(article *models.Article) error
	GetByID(id uint) (*models.Article, error)
	GetAll() ([]models.Article, error)
	Update(article *models.Article) error
	Delete(article *models.Article) error
	CreateOpinion(opinion *models.Opinion) error
	GetOpinions(articleID uint) ([]models.Opinion, error)
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(article *models.Article) error {
	return r.db.Create(article).Error
}

func (r *articleRepository) GetByID(id uint) (*models.Article, error) {
	var article models.Article
	err := r.db.Preload("Opinions", func(db *gorm.DB) *gorm.DB {
		return db.Order("opinions.created_at ASC")
	}).First(&article, id).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) GetAll() ([]models.Article, error) {
	var articles []models.Article
	err := r.db.Preload("Opinions").Order("date DESC").Find(&articles).Error
	return articles, err
}

func (r *articleRepository) Update(article *models.Article) error {
	return r.db.Save(article).Error
}

func (r *articleRepository) Delete(article *models.Article) error {
	// Opinions are removed by the FK cascade.
	return r.db.Delete(article).Error
}

func (r *articleRepository) CreateOpinion(opinion *models.Opinion) error {
	return r.db.Create(opinion).Error
}

func (r *articleRepository) GetOpinions(articleID uint) ([]models.Opinion, error) {
	var opinions []models.Opinion
	err := r.db.Where("article_id = ?", articleID).
		Order("created_at ASC").
		Find(&opinions).Error
	return opinions, err
}
