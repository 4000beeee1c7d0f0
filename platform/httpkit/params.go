package httpkit

import (
	"strconv"
	"strings"

	"smart_crm_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// DefaultPageSize is used when a list request names no limit.
	DefaultPageSize = 100
	// MaxPageSize caps every list request.
	MaxPageSize = 100
)

// Page is a parsed limit/offset pair.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads limit and offset query parameters, clamping the limit to
// MaxPageSize and ignoring unparsable values.
func ParsePage(c *gin.Context) Page {
	p := Page{Limit: DefaultPageSize}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		p.Offset = v
	}
	return p
}

// ParseLimit reads a bounded limit query parameter with a fallback.
func ParseLimit(c *gin.Context, fallback, max int) int {
	v, err := strconv.Atoi(c.Query("limit"))
	if err != nil || v <= 0 {
		return fallback
	}
	if v > max {
		return max
	}
	return v
}

// ParseUUIDParam parses a path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("invalid " + name)
	}
	return id, nil
}

// ParseOptionalUUIDQuery parses an optional UUID query parameter.
func ParseOptionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.BadRequest("invalid " + name)
	}
	return &id, nil
}

// ParseBoolQuery reads an optional boolean query parameter.
func ParseBoolQuery(c *gin.Context, name string) *bool {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// Sort is a parsed order_by/ascending pair. Column is already mapped to a
// trusted SQL expression.
type Sort struct {
	Column    string
	Ascending bool
}

// Direction returns the SQL sort keyword.
func (s Sort) Direction() string {
	if s.Ascending {
		return "ASC"
	}
	return "DESC"
}

// ParseSort maps the order_by query parameter through allowed. Unknown or
// missing keys fall back to fallback, descending unless ascending=true.
func ParseSort(c *gin.Context, allowed map[string]string, fallback string) Sort {
	s := Sort{Column: fallback}
	if col, ok := allowed[strings.TrimSpace(c.Query("order_by"))]; ok {
		s.Column = col
	}
	if v := ParseBoolQuery(c, "ascending"); v != nil {
		s.Ascending = *v
	}
	return s
}
