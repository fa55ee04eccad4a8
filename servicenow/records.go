package servicenow

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// DisplayMode selects how reference fields are returned by the Table API.
type DisplayMode string

// Display modes accepted by sysparm_display_value.
const (
	// DisplayNone returns raw values only.
	DisplayNone DisplayMode = "false"
	// DisplayAll returns both the raw value and the display value per field.
	DisplayAll DisplayMode = "all"
)

// QueryOptions describes a filtered read against one table.
type QueryOptions struct {
	// Query is an encoded query string (conditions joined by ^ and ^OR).
	Query string
	// Fields limits the returned columns. Empty means all.
	Fields []string
	// Display selects raw vs. raw+display values. Defaults to DisplayNone.
	Display DisplayMode
	// Limit caps the number of returned records. Zero means server default.
	Limit int
}

// TableService issues record queries against Table API tables.
type TableService struct {
	c *Client
}

// tableResponse wraps the Table API record list envelope.
type tableResponse struct {
	Result []Record `json:"result"`
}

// Query returns records from table matching opts.
func (s *TableService) Query(ctx context.Context, table string, opts QueryOptions) ([]Record, error) {
	params := url.Values{}
	if opts.Query != "" {
		params.Set("sysparm_query", opts.Query)
	}
	if len(opts.Fields) > 0 {
		params.Set("sysparm_fields", strings.Join(opts.Fields, ","))
	}
	if opts.Display != "" && opts.Display != DisplayNone {
		params.Set("sysparm_display_value", string(opts.Display))
	}
	if opts.Limit > 0 {
		params.Set("sysparm_limit", strconv.Itoa(opts.Limit))
	}
	var resp tableResponse
	if err := s.c.get(ctx, "/api/now/table/"+url.PathEscape(table), params, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Create inserts a record into table and returns the stored record.
func (s *TableService) Create(ctx context.Context, table string, fields map[string]string) (Record, error) {
	var resp struct {
		Result Record `json:"result"`
	}
	if err := s.c.post(ctx, "/api/now/table/"+url.PathEscape(table), fields, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}
