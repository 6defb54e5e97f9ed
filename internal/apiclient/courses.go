package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

const adminCourses = "/admin/courses"

func (c *Client) CreateCourse(ctx context.Context, in CourseInput) (*Course, error) {
	r, err := jsonRequest(http.MethodPost, adminCourses, in)
	if err != nil {
		return nil, err
	}
	return call[*Course](ctx, c, r)
}

func (c *Client) UpdateCourse(ctx context.Context, courseID string, in CourseInput) (*Course, error) {
	r, err := jsonRequest(http.MethodPut, adminCourses+"/"+url.PathEscape(courseID), in)
	if err != nil {
		return nil, err
	}
	return call[*Course](ctx, c, r)
}

func (c *Client) UploadCourseImage(ctx context.Context, courseID string, f File) (*Course, error) {
	r, err := multipartRequest(adminCourses+"/"+url.PathEscape(courseID)+"/cover-image", f)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Err: err}
	}
	return call[*Course](ctx, c, r)
}

func (c *Client) AddChapter(ctx context.Context, courseID string, in ChapterInput) (*Chapter, error) {
	r, err := jsonRequest(http.MethodPost, adminCourses+"/"+url.PathEscape(courseID)+"/chapters", in)
	if err != nil {
		return nil, err
	}
	return call[*Chapter](ctx, c, r)
}

func (c *Client) AddLesson(ctx context.Context, chapterID string, in LessonInput) (*Lesson, error) {
	r, err := jsonRequest(http.MethodPost, adminCourses+"/chapters/"+url.PathEscape(chapterID)+"/lessons", in)
	if err != nil {
		return nil, err
	}
	return call[*Lesson](ctx, c, r)
}

func (c *Client) UploadLessonVideo(ctx context.Context, lessonID string, f File) (*Lesson, error) {
	r, err := multipartRequest(adminCourses+"/lessons/"+url.PathEscape(lessonID)+"/video", f)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Err: err}
	}
	return call[*Lesson](ctx, c, r)
}

func (c *Client) PublishCourse(ctx context.Context, courseID string) (*Course, error) {
	r, _ := jsonRequest(http.MethodPost, adminCourses+"/"+url.PathEscape(courseID)+"/publish", nil)
	return call[*Course](ctx, c, r)
}

func (c *Client) DeleteCourse(ctx context.Context, courseID string) error {
	r, _ := jsonRequest(http.MethodDelete, adminCourses+"/"+url.PathEscape(courseID), nil)
	_, err := call[json.RawMessage](ctx, c, r)
	return err
}

// GetCourseForEditing returns the course with ordered chapters and lessons.
func (c *Client) GetCourseForEditing(ctx context.Context, courseID string) (*Course, error) {
	r, _ := jsonRequest(http.MethodGet, adminCourses+"/"+url.PathEscape(courseID)+"/edit", nil)
	return call[*Course](ctx, c, r)
}

func (c *Client) MyCourses(ctx context.Context, q PageQuery) (*Page[Course], error) {
	r, _ := jsonRequest(http.MethodGet, adminCourses+"/my-courses", nil)
	r.query = q.values()
	return call[*Page[Course]](ctx, c, r)
}
