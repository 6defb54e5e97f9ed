package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

const publicCourses = "/courses/public"

func (c *Client) PublishedCourses(ctx context.Context, q PageQuery) (*Page[Course], error) {
	r, _ := jsonRequest(http.MethodGet, publicCourses, nil)
	r.query = q.values()
	return call[*Page[Course]](ctx, c, r)
}

func (c *Client) PublishedCourse(ctx context.Context, courseID string) (*Course, error) {
	r, _ := jsonRequest(http.MethodGet, publicCourses+"/"+url.PathEscape(courseID), nil)
	return call[*Course](ctx, c, r)
}

func (c *Client) PopularCourses(ctx context.Context, limit int) ([]Course, error) {
	return c.courseList(ctx, "/popular", limit)
}

func (c *Client) TopRatedCourses(ctx context.Context, limit int) ([]Course, error) {
	return c.courseList(ctx, "/top-rated", limit)
}

func (c *Client) LatestCourses(ctx context.Context, limit int) ([]Course, error) {
	return c.courseList(ctx, "/latest", limit)
}

func (c *Client) courseList(ctx context.Context, path string, limit int) ([]Course, error) {
	r, _ := jsonRequest(http.MethodGet, publicCourses+path, nil)
	if limit > 0 {
		r.query = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	return call[[]Course](ctx, c, r)
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	r, _ := jsonRequest(http.MethodGet, "/categories", nil)
	return call[[]Category](ctx, c, r)
}

// CourseWithProgress returns a published course, with progress when signed in.
func (c *Client) CourseWithProgress(ctx context.Context, courseID string) (*CourseProgress, error) {
	r, _ := jsonRequest(http.MethodGet, "/courses/"+url.PathEscape(courseID), nil)
	return call[*CourseProgress](ctx, c, r)
}

func (c *Client) Enroll(ctx context.Context, courseID string) error {
	r, _ := jsonRequest(http.MethodPost, "/courses/"+url.PathEscape(courseID)+"/enroll", nil)
	_, err := call[json.RawMessage](ctx, c, r)
	return err
}

func (c *Client) CompleteLesson(ctx context.Context, lessonID string) (*UserProgress, error) {
	r, _ := jsonRequest(http.MethodPost, "/courses/lessons/"+url.PathEscape(lessonID)+"/complete", nil)
	return call[*UserProgress](ctx, c, r)
}
