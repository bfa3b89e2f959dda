package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorizedScope signals a requested group outside the caller's authorization.
	ErrUnauthorizedScope = errors.New("unauthorized scope")
	// ErrUnsupportedQueryNode signals an unknown query node kind.
	ErrUnsupportedQueryNode = errors.New("unsupported query node")
	// ErrInvalidQuery signals a structurally invalid query description.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrTooManyClauses signals a boolean node above the configured clause ceiling.
	ErrTooManyClauses = errors.New("too many boolean clauses")
	// ErrInsufficientResults signals a page beyond the available ranked results.
	ErrInsufficientResults = errors.New("insufficient results")
	// ErrBoostTransform signals a boost transform that could not be instantiated.
	ErrBoostTransform = errors.New("boost transform failure")
	// ErrUnknownBoost signals a boost name with no registered factory.
	ErrUnknownBoost = errors.New("unknown boost transform")
	// ErrFacetConfiguration signals a facet referencing a category missing from the taxonomy.
	ErrFacetConfiguration = errors.New("facet configuration error")
	// ErrSnapshotAcquisition signals a failure to acquire an index snapshot.
	ErrSnapshotAcquisition = errors.New("snapshot acquisition failure")
	// ErrHandleReleased signals use of a snapshot handle after release.
	ErrHandleReleased = errors.New("snapshot handle already released")
	// ErrInvalidDate signals an unparseable date bound.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidGeometry signals unparseable geometry text.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrRegionLookupUnavailable signals a region reference with no lookup configured.
	ErrRegionLookupUnavailable = errors.New("region lookup unavailable")
	// ErrUnsupportedByEngine signals a query construct the engine cannot express.
	ErrUnsupportedByEngine = errors.New("query construct not supported by engine")
)

// UnauthorizedScopeError wraps ErrUnauthorizedScope with the offending group.
type UnauthorizedScopeError struct {
	Group string
}

func (e *UnauthorizedScopeError) Error() string {
	return fmt.Sprintf("%s: group %q is not authorized", ErrUnauthorizedScope.Error(), e.Group)
}

func (e *UnauthorizedScopeError) Unwrap() error { return ErrUnauthorizedScope }

// UnsupportedQueryNodeError wraps ErrUnsupportedQueryNode with the unknown kind.
type UnsupportedQueryNodeError struct {
	Kind string
}

func (e *UnsupportedQueryNodeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedQueryNode.Error(), e.Kind)
}

func (e *UnsupportedQueryNodeError) Unwrap() error { return ErrUnsupportedQueryNode }

// InsufficientResultsError wraps ErrInsufficientResults with requested vs available counts.
type InsufficientResultsError struct {
	Requested int
	Available int
}

func (e *InsufficientResultsError) Error() string {
	return fmt.Sprintf("%s: not enough search results (%d) available to meet request for %d",
		ErrInsufficientResults.Error(), e.Available, e.Requested)
}

func (e *InsufficientResultsError) Unwrap() error { return ErrInsufficientResults }

// NewInsufficientResults creates an insufficient results error.
func NewInsufficientResults(requested, available int) error {
	return &InsufficientResultsError{Requested: requested, Available: available}
}

// TooManyClausesError wraps ErrTooManyClauses with the clause count and ceiling.
type TooManyClausesError struct {
	Count int
	Max   int
}

func (e *TooManyClausesError) Error() string {
	return fmt.Sprintf("%s: %d clauses exceed ceiling %d", ErrTooManyClauses.Error(), e.Count, e.Max)
}

func (e *TooManyClausesError) Unwrap() error { return ErrTooManyClauses }
