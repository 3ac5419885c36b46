package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/storage"
	"github.com/google/uuid"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Config - параметры подключения к PostgreSQL.
type Config struct {
	DSN             string
	LogLevel        string // silent, error, warn, info
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Store реализует интерфейс Storage с использованием PostgreSQL.
// Счетчик лайков меняется в той же транзакции, что и таблица likes,
// уникальность (user_id, post_id) держит уникальный индекс.
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// New создает новый экземпляр хранилища PostgreSQL.
func New(cfg Config) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         getLogger(cfg.LogLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// Выполняем миграцию схемы
	if err := db.AutoMigrate(&domain.Tag{}, &domain.Post{}, &domain.Comment{}, &domain.Like{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func getLogger(level string) logger.Interface {
	switch level {
	case "silent":
		return logger.Default.LogMode(logger.Silent)
	case "error":
		return logger.Default.LogMode(logger.Error)
	case "warn":
		return logger.Default.LogMode(logger.Warn)
	default:
		return logger.Default.LogMode(logger.Info)
	}
}

// validID отсекает строки, которые PostgreSQL не примет как uuid.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			out = append(out, id)
		}
	}
	return out
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return err
}

func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(search)) + "%"
}

func withPage(q *gorm.DB, args storage.PageArgs) *gorm.DB {
	if args.Size > 0 {
		q = q.Limit(args.Size)
	}
	return q.Offset(args.Offset())
}

// === Tag Methods ===

func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	t := *tag
	t.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: tag %q", domain.ErrDuplicateName, t.Name)
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) GetTagByID(ctx context.Context, id string) (*domain.Tag, error) {
	if !validID(id) {
		return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	var tag domain.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "tag", id)
	}
	return &tag, nil
}

func (s *Store) UpdateTag(ctx context.Context, id, name, slug string) (*domain.Tag, error) {
	if !validID(id) {
		return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	var tag domain.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tag, "id = ?", id).Error; err != nil {
			return notFound(err, "tag", id)
		}
		tag.Name = name
		tag.Slug = slug
		if err := tx.Save(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: tag %q", domain.ErrDuplicateName, name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *Store) DeleteTag(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Tag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
		}
		return nil
	})
}

func (s *Store) ListTags(ctx context.Context, search string, args storage.PageArgs) ([]*domain.Tag, int, error) {
	q := s.db.WithContext(ctx).Model(&domain.Tag{})
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(search))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tags []*domain.Tag
	if err := withPage(q.Order("name ASC"), args).Find(&tags).Error; err != nil {
		return nil, 0, err
	}
	return tags, int(total), nil
}

func (s *Store) CountPostsByTagID(ctx context.Context, tagID string) (int, error) {
	if _, err := s.GetTagByID(ctx, tagID); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.WithContext(ctx).Table("post_tags").Where("tag_id = ?", tagID).Count(&n).Error
	return int(n), err
}

func (s *Store) PostIDsByTagID(ctx context.Context, tagID string) ([]string, error) {
	ids := make([]string, 0)
	if !validID(tagID) {
		return ids, nil
	}
	err := s.db.WithContext(ctx).Table("post_tags").
		Where("tag_id = ?", tagID).
		Order("post_id").
		Pluck("post_id", &ids).Error
	return ids, err
}

// === Post Methods ===

// resolveTags загружает теги по id; неизвестный id - ошибка валидации.
func resolveTags(tx *gorm.DB, tagIDs []string) ([]*domain.Tag, error) {
	unique := make([]string, 0, len(tagIDs))
	seen := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if !validID(id) {
			return nil, &domain.ValidationError{Field: "tags", Msg: fmt.Sprintf("tag %s does not exist", id)}
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	tags := make([]*domain.Tag, 0, len(unique))
	if len(unique) == 0 {
		return tags, nil
	}
	if err := tx.Where("id IN ?", unique).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(unique) {
		return nil, &domain.ValidationError{Field: "tags", Msg: "one or more tags do not exist"}
	}
	return tags, nil
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post, tagIDs []string) (*domain.Post, error) {
	p := *post
	p.ID = uuid.NewString()
	p.Likes = 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, tagIDs)
		if err != nil {
			return err
		}
		p.Tags = tags
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	if !validID(id) {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	var post domain.Post
	if err := s.db.WithContext(ctx).Preload("Tags").First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "post", id)
	}
	return &post, nil
}

// lockPost берет строку поста под FOR UPDATE до конца транзакции.
func lockPost(tx *gorm.DB, id string) (*domain.Post, error) {
	var post domain.Post
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "post", id)
	}
	return &post, nil
}

func (s *Store) GetPostLikes(ctx context.Context, id string) (int, error) {
	if !validID(id) {
		return 0, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	var likes []int
	if err := s.db.WithContext(ctx).Model(&domain.Post{}).Where("id = ?", id).Pluck("likes", &likes).Error; err != nil {
		return 0, err
	}
	if len(likes) == 0 {
		return 0, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return likes[0], nil
}

func (s *Store) UpdatePost(ctx context.Context, id, userID string, upd storage.PostUpdate) (*domain.Post, error) {
	if !validID(id) {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, id)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return fmt.Errorf("post %s: %w", id, domain.ErrPermission)
		}
		if upd.Status != nil {
			if err := domain.CheckTransition(post.Status, *upd.Status); err != nil {
				return err
			}
		}

		var tags []*domain.Tag
		if upd.TagIDs != nil {
			if tags, err = resolveTags(tx, *upd.TagIDs); err != nil {
				return err
			}
		}

		changes := map[string]interface{}{"updated_at": time.Now().UTC()}
		if upd.Title != nil {
			changes["title"] = *upd.Title
		}
		if upd.Content != nil {
			changes["content"] = *upd.Content
		}
		if upd.Status != nil {
			changes["status"] = string(*upd.Status)
		}
		if err := tx.Model(post).Updates(changes).Error; err != nil {
			return err
		}

		if upd.TagIDs != nil {
			assoc := tx.Model(post).Association("Tags")
			if len(tags) == 0 {
				return assoc.Clear()
			}
			return assoc.Replace(tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPostByID(ctx, id)
}

func (s *Store) DeletePost(ctx context.Context, id, userID string) error {
	if !validID(id) {
		return fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, id)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return fmt.Errorf("post %s: %w", id, domain.ErrPermission)
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		// Все комментарии поста одним запросом, FK parent_id проверяется в конце оператора
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, args storage.PageArgs) ([]*domain.Post, int, error) {
	q := s.db.WithContext(ctx).Model(&domain.Post{})

	// Поиск важнее фильтра по тегу
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(content) LIKE ?)", pattern, pattern)
	} else if filter.TagSlug != "" {
		sub := s.db.Table("post_tags").
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.slug = ?", filter.TagSlug)
		q = q.Where("id IN (?)", sub)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var posts []*domain.Post
	err := withPage(q.Preload("Tags").Order("updated_at DESC, id DESC"), args).Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, int(total), nil
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if !validID(comment.PostID) {
		return nil, fmt.Errorf("post %s: %w", comment.PostID, domain.ErrNotFound)
	}
	c := *comment
	c.ID = uuid.NewString()
	c.Children = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Select("id").First(&post, "id = ?", c.PostID).Error; err != nil {
			return notFound(err, "post", c.PostID)
		}

		// Если есть родитель, он должен существовать и принадлежать тому же посту
		if c.ParentID != nil {
			if !validID(*c.ParentID) {
				return fmt.Errorf("%w: comment %s does not exist", domain.ErrInvalidParent, *c.ParentID)
			}
			var parent domain.Comment
			err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
				Select("id", "post_id").
				First(&parent, "id = ?", *c.ParentID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: comment %s does not exist", domain.ErrInvalidParent, *c.ParentID)
			}
			if err != nil {
				return err
			}
			if parent.PostID != c.PostID {
				return fmt.Errorf("%w: comment %s belongs to another post", domain.ErrInvalidParent, parent.ID)
			}
		}

		return tx.Create(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetCommentByID(ctx context.Context, id string) (*domain.Comment, error) {
	if !validID(id) {
		return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	var comment domain.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "comment", id)
	}
	return &comment, nil
}

func lockComment(tx *gorm.DB, id string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&comment, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "comment", id)
	}
	return &comment, nil
}

func (s *Store) UpdateComment(ctx context.Context, id, userID, content string) (*domain.Comment, error) {
	if !validID(id) {
		return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	var comment *domain.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if comment, err = lockComment(tx, id); err != nil {
			return err
		}
		if comment.UserID != userID {
			return fmt.Errorf("comment %s: %w", id, domain.ErrPermission)
		}
		if err := tx.Model(comment).Update("content", content).Error; err != nil {
			return err
		}
		comment.Content = content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, id, userID string) (*domain.Comment, int, error) {
	if !validID(id) {
		return nil, 0, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	var (
		comment *domain.Comment
		deleted int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if comment, err = lockComment(tx, id); err != nil {
			return err
		}
		if comment.UserID != userID {
			return fmt.Errorf("comment %s: %w", id, domain.ErrPermission)
		}

		// Собираем поддерево по уровням, затем удаляем одним запросом
		subtree := []string{id}
		frontier := []string{id}
		for len(frontier) > 0 {
			var children []string
			if err := tx.Model(&domain.Comment{}).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("parent_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			subtree = append(subtree, children...)
			frontier = children
		}

		res := tx.Where("id IN ?", subtree).Delete(&domain.Comment{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return comment, int(deleted), nil
}

// === Pagination Methods ===

func (s *Store) GetRootComments(ctx context.Context, postID string, args storage.PageArgs) ([]*domain.Comment, int, error) {
	q := s.db.WithContext(ctx).Model(&domain.Comment{}).Where("parent_id IS NULL")
	if postID != "" {
		if _, err := s.GetPostByID(ctx, postID); err != nil {
			return nil, 0, err
		}
		q = q.Where("post_id = ?", postID)
	}
	return s.findComments(q, args)
}

func (s *Store) GetCommentsByParentID(ctx context.Context, parentID string, args storage.PageArgs) ([]*domain.Comment, int, error) {
	if _, err := s.GetCommentByID(ctx, parentID); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&domain.Comment{}).Where("parent_id = ?", parentID)
	return s.findComments(q, args)
}

func (s *Store) findComments(q *gorm.DB, args storage.PageArgs) ([]*domain.Comment, int, error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var comments []*domain.Comment
	if err := withPage(q.Order("created_at DESC, id DESC"), args).Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, int(total), nil
}

// === Dataloader Methods ===

type countRow struct {
	GrpKey string
	N      int
}

func (s *Store) countGrouped(ctx context.Context, column string, ids []string) (map[string]int, error) {
	result := make(map[string]int, len(ids))
	for _, id := range ids {
		result[id] = 0
	}
	valid := validIDs(ids)
	if len(valid) == 0 {
		return result, nil
	}

	var rows []countRow
	err := s.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Select(column+" AS grp_key, COUNT(*) AS n").
		Where(column+" IN ?", valid).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		result[r.GrpKey] = r.N
	}
	return result, nil
}

func (s *Store) CountCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error) {
	return s.countGrouped(ctx, "post_id", postIDs)
}

func (s *Store) CountRepliesByParentIDs(ctx context.Context, parentIDs []string) (map[string]int, error) {
	return s.countGrouped(ctx, "parent_id", parentIDs)
}

// === Like Methods ===

func (s *Store) CreateLike(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	if !validID(like.PostID) {
		return nil, fmt.Errorf("post %s: %w", like.PostID, domain.ErrNotFound)
	}
	l := *like
	l.ID = uuid.NewString()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Блокировка строки поста упорядочивает все изменения его счетчика
		if _, err := lockPost(tx, l.PostID); err != nil {
			return err
		}
		if err := tx.Create(&l).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateLike
			}
			return err
		}
		return tx.Model(&domain.Post{}).
			Where("id = ?", l.PostID).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) GetLikeByID(ctx context.Context, id string) (*domain.Like, error) {
	if !validID(id) {
		return nil, fmt.Errorf("like %s: %w", id, domain.ErrNotFound)
	}
	var like domain.Like
	if err := s.db.WithContext(ctx).First(&like, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "like", id)
	}
	return &like, nil
}

func (s *Store) DeleteLike(ctx context.Context, id, userID string) (*domain.Like, error) {
	if !validID(id) {
		return nil, fmt.Errorf("like %s: %w", id, domain.ErrNotFound)
	}
	var like domain.Like
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&like, "id = ?", id).Error; err != nil {
			return notFound(err, "like", id)
		}
		if like.UserID != userID {
			return fmt.Errorf("like %s: %w", id, domain.ErrPermission)
		}
		if _, err := lockPost(tx, like.PostID); err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Like{})
		if res.Error != nil {
			return res.Error
		}
		// Лайк мог удалить параллельный запрос, пока мы ждали блокировку
		if res.RowsAffected == 0 {
			return fmt.Errorf("like %s: %w", id, domain.ErrNotFound)
		}
		return tx.Model(&domain.Post{}).
			Where("id = ?", like.PostID).
			UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (s *Store) ListLikes(ctx context.Context, postID string, args storage.PageArgs) ([]*domain.Like, int, error) {
	q := s.db.WithContext(ctx).Model(&domain.Like{})
	if postID != "" {
		if !validID(postID) {
			return []*domain.Like{}, 0, nil
		}
		q = q.Where("post_id = ?", postID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var likes []*domain.Like
	if err := withPage(q.Order("created_at DESC, id DESC"), args).Find(&likes).Error; err != nil {
		return nil, 0, err
	}
	return likes, int(total), nil
}

func (s *Store) HasLike(ctx context.Context, postID, userID string) (bool, error) {
	if !validID(postID) || userID == "" {
		return false, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&n).Error
	return n > 0, err
}

func (s *Store) LikedPostIDs(ctx context.Context, postIDs []string, userID string) (map[string]bool, error) {
	liked := make(map[string]bool, len(postIDs))
	ids := validIDs(postIDs)
	if len(ids) == 0 || userID == "" {
		return liked, nil
	}
	var found []string
	if err := s.db.WithContext(ctx).Model(&domain.Like{}).
		Where("post_id IN ? AND user_id = ?", ids, userID).
		Pluck("post_id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		liked[id] = true
	}
	return liked, nil
}

func (s *Store) CountLikesByPostID(ctx context.Context, postID string) (int, error) {
	if !validID(postID) {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.Like{}).Where("post_id = ?", postID).Count(&n).Error
	return int(n), err
}
