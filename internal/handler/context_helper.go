package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/collection"
	"github.com/ecclesia-app/admin-gateway/internal/middleware"
	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.Claims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.Claims)
	if !ok {
		return nil
	}
	return claims
}

// queryFromRequest parses the shared list view state: search text, named
// filters via filter[name]=value, page window and sort order. When the
// dashboard echoes the view state it last rendered (prev_search and
// prev_filter[name]), a changed search or filter resets the page to 1 so
// the new result set starts from its first page.
func queryFromRequest(c *gin.Context) collection.Query {
	q := collection.Query{
		Search:    strings.TrimSpace(c.Query("search")),
		Filters:   c.QueryMap("filter"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil {
		q.PageSize = size
	}
	if prev, ok := previousQuery(c); ok {
		q = q.Normalize(prev)
	}
	return q
}

func previousQuery(c *gin.Context) (collection.Query, bool) {
	prevSearch, hasSearch := c.GetQuery("prev_search")
	prevFilters := c.QueryMap("prev_filter")
	if !hasSearch && len(prevFilters) == 0 {
		return collection.Query{}, false
	}
	return collection.Query{
		Search:  strings.TrimSpace(prevSearch),
		Filters: prevFilters,
	}, true
}

func refreshFromRequest(c *gin.Context) bool {
	return strings.EqualFold(c.Query("refresh"), "true")
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

func queryID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" is required")
	}
	return id, nil
}

// requireScopeID guards the scope id carried in a JSON body. A write bound
// to church or mission 0 would go upstream incomplete and invalidate the
// wrong snapshot, leaving the real list stale after the write.
func requireScopeID(id int64, name string) error {
	if id <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, name+" is required")
	}
	return nil
}

func parseFormID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.PostForm(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" is required")
	}
	return id, nil
}

// formFilePart reads an optional uploaded file into an upstream part. A
// missing file is not an error; the draft simply has no binary field.
func formFilePart(c *gin.Context, field string) (*upstream.FilePart, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid file upload")
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid file upload")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid file upload")
	}
	return &upstream.FilePart{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}
