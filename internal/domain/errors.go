package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrConfiguration indicates a bad or missing source directory, no
	// matching documents, or an invalid setting
	ErrConfiguration = errors.New("configuration error")

	// ErrDocumentRead indicates a document could not be read or was empty
	ErrDocumentRead = errors.New("document read error")

	// ErrNotIndexed indicates the dataset has no manifest
	ErrNotIndexed = errors.New("dataset not indexed")

	// ErrCorruptIndex indicates a malformed manifest or shard
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrDimensionMismatch indicates embedding vectors of different lengths
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidInput indicates the request is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// LLM collaborator errors. Every category also matches ErrLLM.
var (
	ErrLLM               = errors.New("llm error")
	ErrLLMInvalidRequest = fmt.Errorf("%w: invalid request", ErrLLM)
	ErrLLMAuthentication = fmt.Errorf("%w: authentication failed", ErrLLM)
	ErrLLMRateLimit      = fmt.Errorf("%w: rate limited", ErrLLM)
	ErrLLMUnavailable    = fmt.Errorf("%w: service unavailable", ErrLLM)
)
