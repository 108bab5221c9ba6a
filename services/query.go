package services

import (
	"time"

	"cityfix-be/models"
	"cityfix-be/pkg/apperr"
	"cityfix-be/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 200
)

// QueryParams are the raw list-query inputs as they arrive from the caller.
// Dates are "2006-01-02" strings matched at day granularity, both bounds
// inclusive.
type QueryParams struct {
	Page        int
	PageSize    int
	Status      string
	Area        string
	IssueNumber string
	Title       string
	Phone       string
	StartDate   string
	EndDate     string
}

// normalizeQuery validates and normalizes the raw params into the store
// query: pages clamped, page size capped, the inclusive end date converted to
// an exclusive next-day bound.
func normalizeQuery(p QueryParams) (repository.IssueQuery, error) {
	q := repository.IssueQuery{
		Area:        p.Area,
		IssueNumber: p.IssueNumber,
		Title:       p.Title,
		Phone:       p.Phone,
		Status:      p.Status,
		Page:        p.Page,
		PageSize:    p.PageSize,
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	if q.Status != "" && q.Status != "all" && !models.ValidIssueStatus(q.Status) {
		return q, apperr.Validation("invalid status filter %q", q.Status)
	}
	if q.Area != "" && !models.ValidArea(q.Area) {
		return q, apperr.Validation("invalid area filter %q", q.Area)
	}

	if p.StartDate != "" {
		start, err := time.ParseInLocation("2006-01-02", p.StartDate, time.Local)
		if err != nil {
			return q, apperr.Validation("invalid start date %q", p.StartDate)
		}
		q.StartDate = &start
	}
	if p.EndDate != "" {
		end, err := time.ParseInLocation("2006-01-02", p.EndDate, time.Local)
		if err != nil {
			return q, apperr.Validation("invalid end date %q", p.EndDate)
		}
		exclusive := end.AddDate(0, 0, 1)
		q.EndDate = &exclusive
	}

	return q, nil
}
