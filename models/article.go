package models

import "time"

type Article struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Title     string    `json:"title" gorm:"not null"`
	Summary   string    `json:"summary"`
	Author    string    `json:"author"`
	Date      time.Time `json:"date"`
	CreatedBy string    `json:"created_by" gorm:"index"`
	Opinions  []Opinion `json:"opinions" gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
}

// Opinion is a reader comment attached to exactly one article. Rows are
// never updated after creation and are removed with their article.
type Opinion struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ArticleID uint      `json:"article_id" gorm:"not null;index"`
	Comments  string    `json:"comments"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
