package params

import (
	"strconv"

	"cfp-api/core/constants"

	"github.com/labstack/echo/v4"
)

type QueryParams struct {
	PageNumber int
	PageSize   int
}

// NewQueryParams reads ?page= and ?limit= with defaults and an upper bound.
func NewQueryParams(ctx echo.Context) *QueryParams {
	return &QueryParams{
		PageNumber: parsePositive(ctx.QueryParam("page"), constants.DefaultPageNumber, 0),
		PageSize:   parsePositive(ctx.QueryParam("limit"), constants.DefaultPageSize, constants.MaxPageSize),
	}
}

func (p QueryParams) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

func parsePositive(raw string, fallback, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
