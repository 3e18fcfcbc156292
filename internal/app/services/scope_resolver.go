package services

import (
	"context"
	"fmt"

	"github.com/yigit/gtostat/internal/app/repositories"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// scopeResolver expands a scope into the ids of the students it contains
type scopeResolver struct {
	institutes InstituteStore
	groups     GroupStore
	students   StudentStore
	maxCourse  int
}

// studentIDs returns the students of the scope. A missing scope entity is NotFound;
// an empty scope yields an empty non-nil slice.
func (r scopeResolver) studentIDs(ctx context.Context, scope Scope) ([]int64, error) {
	switch {
	case scope.keys() != 1:
		return nil, apperrors.ErrInvalidScope

	case scope.InstituteID != 0:
		if _, err := r.institutes.GetByID(ctx, scope.InstituteID); err != nil {
			return nil, err
		}
		groups, err := r.groups.List(ctx, repositories.GroupFilter{
			InstituteID: scope.InstituteID,
			MinCourse:   1,
			MaxCourse:   r.maxCourse,
		})
		if err != nil {
			return nil, fmt.Errorf("error listing groups of institute %d: %w", scope.InstituteID, err)
		}
		if len(groups) == 0 {
			return []int64{}, nil
		}
		groupIDs := make([]int64, 0, len(groups))
		for _, g := range groups {
			groupIDs = append(groupIDs, g.ID)
		}
		return r.list(ctx, repositories.StudentFilter{GroupIDs: groupIDs})

	case scope.GroupID != 0:
		if _, err := r.groups.GetByID(ctx, scope.GroupID); err != nil {
			return nil, err
		}
		return r.list(ctx, repositories.StudentFilter{GroupID: scope.GroupID})

	default:
		if _, err := r.students.GetByID(ctx, scope.StudentID); err != nil {
			return nil, err
		}
		return []int64{scope.StudentID}, nil
	}
}

func (r scopeResolver) list(ctx context.Context, filter repositories.StudentFilter) ([]int64, error) {
	ids, err := r.students.ListIDs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
