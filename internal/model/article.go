package model

import "time"

const DefaultCategory = "domestic"

type Article struct {
	ID         uint   `gorm:"primaryKey"`
	Title      string `gorm:"size:150;not null"`
	Content    string `gorm:"type:text;not null"`
	Category   string `gorm:"size:50;index;default:domestic"`
	AuthorID   uint   `gorm:"not null;index"`
	Attachment string `gorm:"size:255"`
	CreatedAt  time.Time

	Author User `gorm:"foreignKey:AuthorID"`
}

type ArticleView struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Attachment string    `json:"attachment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *Article) View() ArticleView {
	name := a.Author.Username
	if name == "" {
		name = "Unknown"
	}

	return ArticleView{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		Category:   a.Category,
		AuthorID:   a.AuthorID,
		AuthorName: name,
		Attachment: a.Attachment,
		CreatedAt:  a.CreatedAt,
	}
}
