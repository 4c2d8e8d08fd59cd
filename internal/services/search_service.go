package services

import (
	"context"
	"time"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/repository/sqlite"
)

// searchServiceImpl implements the SearchService interface
type searchServiceImpl struct {
	repo        sqlite.Repository
	timeService TimeService
	mapper      *domain.Mapper
}

// NewSearchService creates a new SearchService instance
func NewSearchService(repo sqlite.Repository, timeService TimeService) SearchService {
	return &searchServiceImpl{
		repo:        repo,
		timeService: timeService,
		mapper:      domain.NewMapper(),
	}
}

// clampLimit applies def to non-positive limits and caps at max
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// GetTimeline lists the sessions started on date, newest first
func (s *searchServiceImpl) GetTimeline(ctx context.Context, date time.Time, limit int) (*Timeline, error) {
	day := s.timeService.FormatDate(date)
	filter := sqlite.SessionFilter{
		StartDay: &day,
		EndDay:   &day,
		Limit:    clampLimit(limit, DefaultTimelineLimit, MaxTimelineLimit),
	}

	dbSessions, err := s.repo.ListSessions(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.timeService.Now()
	timeline := &Timeline{Date: day, Sessions: make([]TimelineEntry, 0, len(dbSessions))}
	for _, dbSession := range dbSessions {
		session := s.mapper.Session.FromDatabase(*dbSession)
		timeline.Sessions = append(timeline.Sessions, TimelineEntry{
			Session:  session,
			Duration: seconds(session.Duration(now)),
		})
	}
	return timeline, nil
}

// SearchSessions lists sessions matching filter, newest first
func (s *searchServiceImpl) SearchSessions(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	filter.Limit = clampLimit(filter.Limit, DefaultSessionLimit, MaxSessionLimit)

	dbSessions, err := s.repo.ListSessions(ctx, s.mapper.SessionFilter.ToDatabase(filter))
	if err != nil {
		return nil, err
	}

	sessions := make([]*domain.Session, len(dbSessions))
	for i, dbSession := range dbSessions {
		session := s.mapper.Session.FromDatabase(*dbSession)
		sessions[i] = &session
	}
	return sessions, nil
}
