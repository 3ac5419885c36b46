package domain

import "time"

// Tag - метка, которой автор помечает посты. Переживает посты, к которым привязана.
type Tag struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key"`
	Name      string    `json:"name" gorm:"type:varchar(50);not null;uniqueIndex"`
	Slug      string    `json:"slug" gorm:"type:varchar(50);not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

// Post представляет пост в системе.
// Likes - денормализованный счетчик, всегда равен числу записей Like для поста.
type Post struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key"`
	UserID    string    `json:"user" gorm:"type:varchar(255);not null;index"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Status    Status    `json:"status" gorm:"type:varchar(11);not null;default:draft"`
	Likes     int       `json:"likes" gorm:"not null;default:0;check:chk_posts_likes,likes >= 0"`
	Tags      []*Tag    `json:"tags" gorm:"many2many:post_tags;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;index"`

	Comments  []*Comment `json:"-" gorm:"foreignKey:PostID"` // gorm only
	PostLikes []*Like    `json:"-" gorm:"foreignKey:PostID"` // gorm only
}

// Comment представляет комментарий к посту.
// ParentID ссылается на комментарий того же поста, nil - корневой комментарий.
type Comment struct {
	ID        string     `json:"id" gorm:"type:uuid;primary_key"`
	PostID    string     `json:"post" gorm:"type:uuid;not null;index"`
	ParentID  *string    `json:"parent,omitempty" gorm:"type:uuid;index"`
	UserID    string     `json:"user" gorm:"type:varchar(255);not null"`
	Content   string     `json:"content" gorm:"type:varchar(2000);not null"`
	CreatedAt time.Time  `json:"createdAt" gorm:"not null;index"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"not null"`
	Children  []*Comment `json:"-" gorm:"foreignKey:ParentID"` // gorm only
}

// Like - отметка пользователя на посте. Пара (UserID, PostID) уникальна.
type Like struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key"`
	UserID    string    `json:"user" gorm:"type:varchar(255);not null;uniqueIndex:idx_likes_user_post"`
	PostID    string    `json:"post" gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_post;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}
