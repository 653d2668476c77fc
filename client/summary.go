package client

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Summary holds the collection totals shown on the dashboard
type Summary struct {
	Courses  int
	Students int
	Teachers int
}

// FetchSummary requests the three totals concurrently. Any failure
// returns a zero summary.
func (c *Client) FetchSummary(ctx context.Context) (Summary, error) {
	var summary Summary

	g, gctx := errgroup.WithContext(ctx)

	count := func(resource string, dst *int) {
		g.Go(func() error {
			var res struct {
				Total int `json:"total"`
			}
			if err := c.Get(gctx, "/api/"+resource+"?page=1&limit=1", &res); err != nil {
				return err
			}
			*dst = res.Total
			return nil
		})
	}

	count(ResourceCourses, &summary.Courses)
	count(ResourceStudents, &summary.Students)
	count(ResourceTeachers, &summary.Teachers)

	if err := g.Wait(); err != nil {
		c.logger.Warn("failed to fetch dashboard summary", "error", err)
		return Summary{}, err
	}

	return summary, nil
}
