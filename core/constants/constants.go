package constants

import "time"

const (
	ContextTokenData = "token_data"

	DefaultTimeout        = 5 * time.Second
	DefaultRequestTimeout = 10 * time.Second

	ScopeTokenAccess = "access"
)

// Redis keys
const (
	RedisKeyActiveReviewPhase = "review:active_phase:"
	ActiveReviewPhaseTTL      = 10 * time.Minute
)

// Pagination
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
)
