package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/inkwell/blog-api/models"
	"github.com/inkwell/blog-api/utils"
	"gorm.io/gorm"
)

// Sort orders for post listings.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortRating = "rating"
	SortViews  = "views"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// searchBatchSize bounds the fallback search scan.
	searchBatchSize = 100
	// tagResultCap bounds tag-filtered listings.
	tagResultCap = 50
)

var sortOrders = map[string]string{
	SortNewest: "created_at DESC",
	SortOldest: "created_at ASC",
	SortRating: "avg_rating DESC",
	SortViews:  "view_count DESC",
}

// PostPage is one cursor-delimited page of posts.
type PostPage struct {
	Posts      []models.Post `json:"posts"`
	HasMore    bool          `json:"hasMore"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// listCursor is the decoded form of the opaque pagination token. Callers
// pass the encoded token back verbatim; its layout is not part of the API.
type listCursor struct {
	SortBy string `json:"s"`
	Offset int    `json:"o"`
}

func encodeCursor(c listCursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(token string) (listCursor, error) {
	var c listCursor
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, utils.NewValidationError("malformed cursor")
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, utils.NewValidationError("malformed cursor")
	}
	return c, nil
}

// PostService serves ordered, cursor-based pages of posts plus the two
// bounded fallback paths (search, tag filter) that cannot be expressed as
// indexed cursor queries.
type PostService struct {
	DB *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{DB: db}
}

// List returns one page ordered by sortBy. It fetches pageSize+1 rows; the
// extra row only signals that another page exists and is excluded from the
// result. Ordering is single-field; ties resolve in whatever order the
// database returns them.
func (s *PostService) List(ctx context.Context, sortBy string, pageSize int, cursor string) (*PostPage, error) {
	order, ok := sortOrders[sortBy]
	if !ok {
		return nil, utils.NewValidationError("unknown sort order %q", sortBy)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	offset := 0
	if cursor != "" {
		c, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		if c.SortBy != sortBy {
			return nil, utils.NewValidationError("cursor does not match sort order %q", sortBy)
		}
		offset = c.Offset
	}

	var posts []models.Post
	if err := s.DB.WithContext(ctx).
		Preload("Media").
		Order(order).
		Offset(offset).
		Limit(pageSize + 1).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	page := &PostPage{}
	if len(posts) > pageSize {
		page.Posts = posts[:pageSize]
		page.HasMore = true
		page.NextCursor = encodeCursor(listCursor{SortBy: sortBy, Offset: offset + pageSize})
	} else {
		page.Posts = posts
	}
	return page, nil
}

// Search is the fallback full-text path: it scans a bounded batch of the
// newest posts and keeps any whose concatenated fields contain any query
// token as a substring. OR semantics, unranked -- an approximation, not a
// search index.
func (s *PostService) Search(ctx context.Context, query string) ([]models.Post, error) {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return []models.Post{}, nil
	}

	var batch []models.Post
	if err := s.DB.WithContext(ctx).
		Preload("Media").
		Order("created_at DESC").
		Limit(searchBatchSize).
		Find(&batch).Error; err != nil {
		return nil, err
	}

	matches := []models.Post{}
	for _, post := range batch {
		haystack := strings.ToLower(post.Title + " " + post.Content + " " + post.Excerpt + " " + strings.Join(post.Tags, " "))
		for _, token := range tokens {
			if strings.Contains(haystack, token) {
				matches = append(matches, post)
				break
			}
		}
	}
	return matches, nil
}

// ByTag lists posts carrying the tag, newest first, capped at 50.
func (s *PostService) ByTag(ctx context.Context, tag string) ([]models.Post, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, utils.NewValidationError("tag is required")
	}

	var posts []models.Post
	if err := s.DB.WithContext(ctx).
		Preload("Media").
		Where("? = ANY(tags)", tag).
		Order("created_at DESC").
		Limit(tagResultCap).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
