package bingo

import "time"

const (
	// CardSize is the number of rows and columns of a bingo card
	CardSize = 5

	// FreeSpace is the sentinel value stored in the centre cell
	FreeSpace = 0

	// FreeRow and FreeCol locate the free space
	FreeRow = 2
	FreeCol = 2

	// ColumnSpan is the amount of numbers each column draws from
	ColumnSpan = 15

	// MinBallNumber and MaxBallNumber bound the numbers that can be called
	MinBallNumber = 1
	MaxBallNumber = 75
)

// Line identifiers reported in WinResult.MatchedLines.
// Rows use 0-4, columns 5-9, then the two diagonals.
const (
	FirstRowLine     = 0
	FirstColumnLine  = 5
	MainDiagonalLine = 10
	AntiDiagonalLine = 11
)

const (
	// ProbabilityTolerance is the tolerance for probability sum validation
	ProbabilityTolerance = 0.0001

	// MaxTicketPoolSize caps the ticket pool accepted by the allocator
	MaxTicketPoolSize = 1_000_000
)

const (
	// DrawKeyPrefix is the prefix for Redis keys holding bingo draws
	DrawKeyPrefix = "bingo:draw:"

	// RaffleKeyPrefix is the prefix for Redis keys holding raffles
	RaffleKeyPrefix = "bingo:raffle:"

	// DefaultStateTTL is the default TTL for persisted aggregates
	DefaultStateTTL = 24 * time.Hour

	// MaxSerializationSize is the maximum allowed size for a serialized aggregate (10MB)
	MaxSerializationSize = 10 * 1024 * 1024

	// DefaultRetryAttempts is the default number of store retry attempts
	DefaultRetryAttempts = 3

	// DefaultRetryInterval is the base delay between store retry attempts
	DefaultRetryInterval = 100 * time.Millisecond

	// MaxRetryAttempts is the maximum number of retry attempts allowed
	MaxRetryAttempts = 10

	// MaxRetryDelay caps the exponential backoff between retries
	MaxRetryDelay = 5 * time.Second
)

const (
	// DefaultCircuitBreakerName is the default name for Circuit Breaker
	DefaultCircuitBreakerName = "bingo-store"

	// DefaultCircuitBreakerMaxRequests is the default max requests
	DefaultCircuitBreakerMaxRequests = 3

	// DefaultCircuitBreakerInterval is the default interval
	DefaultCircuitBreakerInterval = 60 * time.Second

	// DefaultCircuitBreakerTimeout is the default timeout
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// DefaultCircuitBreakerFailureRatio is the default failure ratio
	DefaultCircuitBreakerFailureRatio = 0.6

	// DefaultCircuitBreakerMinRequests is the default min requests
	DefaultCircuitBreakerMinRequests = 3

	// DefaultCircuitBreakerOnStateChange is the default on state change
	DefaultCircuitBreakerOnStateChange = true
)

const (
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 50
	DefaultRedisMinIdleConns = 10
	DefaultRedisMaxRetries   = 3
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolTimeout  = 4 * time.Second
)

const (
	DefaultLogLevel    = "info"
	DefaultLogEncoding = "json"
)
