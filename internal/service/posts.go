package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitwise74/blog-api/internal/model"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const (
	SortLatest    = "latest"
	SortMostLiked = "most_liked"
)

type PostInput struct {
	Title   string
	Content string
}

type ListOptions struct {
	MyPosts bool
	Sort    string
}

// PostResource is a post as seen by one viewer
type PostResource struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	LikesCount int64     `json:"likes_count"`
	IsLiked    bool      `json:"is_liked"`
	IsAuthor   bool      `json:"is_author"`
	CreatedAt  time.Time `json:"created_at"`
}

type postRow struct {
	ID         uint
	UserID     string
	Title      string
	Content    string
	CreatedAt  time.Time
	Author     string
	LikesCount int64
	IsLiked    bool
}

type PostStore struct {
	db *gorm.DB
	// Content comes from a rich text editor, titles are plain text
	content *bluemonday.Policy
	title   *bluemonday.Policy
}

func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{
		db:      db,
		content: bluemonday.UGCPolicy(),
		title:   bluemonday.StrictPolicy(),
	}
}

func (s *PostStore) query(ctx context.Context, viewerID string) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("posts").
		Select(`posts.id, posts.user_id, posts.title, posts.content, posts.created_at,
			users.name AS author,
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
			EXISTS (SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS is_liked`, viewerID).
		Joins("JOIN users ON users.id = posts.user_id")
}

func (r postRow) resource(viewerID string) PostResource {
	return PostResource{
		ID:         r.ID,
		Title:      r.Title,
		Content:    r.Content,
		Author:     r.Author,
		LikesCount: r.LikesCount,
		IsLiked:    r.IsLiked,
		IsAuthor:   r.UserID == viewerID,
		CreatedAt:  r.CreatedAt,
	}
}

func (s *PostStore) List(ctx context.Context, viewerID string, opts ListOptions) ([]PostResource, error) {
	q := s.query(ctx, viewerID)

	if opts.MyPosts {
		q = q.Where("posts.user_id = ?", viewerID)
	}

	if opts.Sort == SortMostLiked {
		q = q.Order("likes_count DESC").Order("posts.created_at DESC")
	} else {
		q = q.Order("posts.created_at DESC")
	}
	q = q.Order("posts.id DESC")

	var rows []postRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts, %w", err)
	}

	out := make([]PostResource, len(rows))
	for i, r := range rows {
		out[i] = r.resource(viewerID)
	}

	return out, nil
}

func (s *PostStore) Get(ctx context.Context, viewerID string, postID uint) (*PostResource, error) {
	var rows []postRow

	err := s.query(ctx, viewerID).
		Where("posts.id = ?", postID).
		Scan(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post, %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	res := rows[0].resource(viewerID)
	return &res, nil
}

func (s *PostStore) Create(ctx context.Context, userID string, in PostInput) (*model.Post, error) {
	post := model.Post{
		UserID:  userID,
		Title:   s.cleanTitle(in.Title),
		Content: s.content.Sanitize(in.Content),
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post, %w", err)
	}

	return &post, nil
}

// Update changes title and/or content. Empty fields are left untouched.
func (s *PostStore) Update(ctx context.Context, userID string, postID uint, in PostInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := ownedPost(tx, userID, postID)
		if err != nil {
			return err
		}

		changes := map[string]any{}
		if in.Title != "" {
			changes["title"] = s.cleanTitle(in.Title)
		}
		if in.Content != "" {
			changes["content"] = s.content.Sanitize(in.Content)
		}
		if len(changes) == 0 {
			return nil
		}

		return tx.Model(post).Updates(changes).Error
	})
}

func (s *PostStore) Delete(ctx context.Context, userID string, postID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := ownedPost(tx, userID, postID)
		if err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", post.ID).Delete(&model.Like{}).Error; err != nil {
			return err
		}

		return tx.Delete(post).Error
	})
}

// ToggleLike likes the post for userID, or unlikes it if it was already
// liked. It returns the new state and the post's like count.
func (s *PostStore) ToggleLike(ctx context.Context, userID string, postID uint) (liked bool, count int64, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Select("id", "user_id").Where("id = ?", postID).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if post.UserID == userID {
			return ErrCannotLikeOwnPost
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			err := tx.Create(&model.Like{PostID: postID, UserID: userID}).Error
			if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			liked = true
		}

		return tx.Model(&model.Like{}).Where("post_id = ?", postID).Count(&count).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCannotLikeOwnPost) {
			return false, 0, err
		}
		return false, 0, fmt.Errorf("failed to toggle like, %w", err)
	}

	return liked, count, nil
}

func (s *PostStore) cleanTitle(t string) string {
	return strings.TrimSpace(s.title.Sanitize(t))
}

func ownedPost(tx *gorm.DB, userID string, postID uint) (*model.Post, error) {
	var post model.Post
	if err := tx.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	owner := model.User{ID: userID}
	if !owner.OwnsPost(&post) {
		return nil, ErrForbidden
	}

	return &post, nil
}
