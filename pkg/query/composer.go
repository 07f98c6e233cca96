// Package query turns untrusted list parameters (search, filters, sort,
// pagination) into SQL fragments. Values are only ever emitted as named bound
// arguments; identifiers come from a fixed allow-list.
package query

import (
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// keeps (page-1)*limit far from int overflow
const maxPage = 1_000_000

// Params holds raw query-string values keyed by parameter name.
type Params map[string]string

// Fragment is a predicate with its bound arguments. Args are sql.NamedArg
// values referenced as @name in SQL.
type Fragment struct {
	SQL  string
	Args []interface{}
}

func (f Fragment) Empty() bool {
	return f.SQL == ""
}

type Options struct {
	Alias        string
	DefaultLimit int
	MaxLimit     int
	SortFields   []string
	DefaultSort  string
}

type Composer struct {
	opts     Options
	sortable map[string]struct{}
}

// ParamError reports a query parameter that could not be interpreted.
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid query parameter %s: %s", e.Field, e.Message)
}

func New(opts Options) (*Composer, error) {
	if opts.Alias != "" && !identPattern.MatchString(opts.Alias) {
		return nil, fmt.Errorf("query: invalid alias %q", opts.Alias)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	if opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = opts.MaxLimit
	}

	sortable := make(map[string]struct{}, len(opts.SortFields))
	for _, f := range opts.SortFields {
		if !identPattern.MatchString(f) {
			return nil, fmt.Errorf("query: invalid sort field %q", f)
		}
		sortable[f] = struct{}{}
	}
	if _, ok := sortable[opts.DefaultSort]; !ok {
		return nil, fmt.Errorf("query: default sort %q is not sortable", opts.DefaultSort)
	}

	return &Composer{opts: opts, sortable: sortable}, nil
}

func MustNew(opts Options) *Composer {
	c, err := New(opts)
	if err != nil {
		panic(err)
	}
	return c
}

type Result struct {
	Search  Fragment
	Filter  Fragment
	OrderBy string
	Page    int
	Limit   int
	Offset  int
}

type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

func (r *Result) Pagination(total int64) Pagination {
	totalPages := 0
	if r.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(r.Limit)))
	}
	return Pagination{
		Page:        r.Page,
		Limit:       r.Limit,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNextPage: r.Page < totalPages,
		HasPrevPage: r.Page > 1,
	}
}

func (c *Composer) Compose(p Params) (*Result, error) {
	filter, err := c.filter(p)
	if err != nil {
		return nil, err
	}

	page, limit := c.paginate(p)

	return &Result{
		Search:  c.search(p),
		Filter:  filter,
		OrderBy: c.order(p),
		Page:    page,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}, nil
}

// Window resolves only ordering and the page window of p, for listings that
// take no search or filters.
func (c *Composer) Window(p Params) *Result {
	page, limit := c.paginate(p)
	return &Result{
		OrderBy: c.order(p),
		Page:    page,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}
}

func (c *Composer) column(name string) string {
	if c.opts.Alias == "" {
		return name
	}
	return c.opts.Alias + "." + name
}

func (c *Composer) search(p Params) Fragment {
	term := strings.TrimSpace(p["search"])
	if term == "" {
		return Fragment{}
	}
	return Fragment{
		SQL: fmt.Sprintf("(%s ILIKE @search OR %s ILIKE @search)", c.column("title"), c.column("content")),
		Args: []interface{}{
			sql.Named("search", "%"+escapeLike(term)+"%"),
		},
	}
}

func (c *Composer) filter(p Params) (Fragment, error) {
	var clauses []string
	var args []interface{}

	if raw := strings.TrimSpace(p["category_id"]); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Fragment{}, &ParamError{Field: "category_id", Message: "must be a valid id"}
		}
		clauses = append(clauses, c.column("category_id")+" = @category_id")
		args = append(args, sql.Named("category_id", id))
	}

	if raw, ok := p["is_pinned"]; ok && raw != "" {
		pinned := raw == "true" || raw == "1"
		clauses = append(clauses, c.column("is_pinned")+" = @is_pinned")
		args = append(args, sql.Named("is_pinned", pinned))
	}

	if raw := strings.TrimSpace(p["date_from"]); raw != "" {
		from, _, err := parseDate(raw)
		if err != nil {
			return Fragment{}, &ParamError{Field: "date_from", Message: "must be a date (YYYY-MM-DD or RFC3339)"}
		}
		clauses = append(clauses, c.column("created_at")+" >= @date_from")
		args = append(args, sql.Named("date_from", from))
	}

	if raw := strings.TrimSpace(p["date_to"]); raw != "" {
		to, dateOnly, err := parseDate(raw)
		if err != nil {
			return Fragment{}, &ParamError{Field: "date_to", Message: "must be a date (YYYY-MM-DD or RFC3339)"}
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		clauses = append(clauses, c.column("created_at")+" <= @date_to")
		args = append(args, sql.Named("date_to", to))
	}

	if len(clauses) == 0 {
		return Fragment{}, nil
	}
	return Fragment{SQL: strings.Join(clauses, " AND "), Args: args}, nil
}

func (c *Composer) order(p Params) string {
	field := strings.TrimSpace(p["sort"])
	if _, ok := c.sortable[field]; !ok {
		field = c.opts.DefaultSort
	}
	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(p["order"]), "asc") {
		direction = "ASC"
	}
	return c.column(field) + " " + direction
}

func (c *Composer) paginate(p Params) (int, int) {
	page, err := strconv.Atoi(strings.TrimSpace(p["page"]))
	if err != nil || page <= 0 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit, err := strconv.Atoi(strings.TrimSpace(p["limit"]))
	if err != nil || limit <= 0 {
		limit = c.opts.DefaultLimit
	}
	if limit > c.opts.MaxLimit {
		limit = c.opts.MaxLimit
	}
	return page, limit
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
