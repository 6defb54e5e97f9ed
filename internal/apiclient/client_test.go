package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success":   success,
		"message":   message,
		"data":      data,
		"timestamp": "2026-01-01T00:00:00Z",
	})
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithUnauthorizedHandler(func(context.Context) {})}, opts...)
	return New(srv.URL+"/api", opts...)
}

func TestCreateCourseSendsJSONAndDecodesData(t *testing.T) {
	var got CourseInput
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/admin/courses" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeEnvelope(w, http.StatusCreated, true, "Course created", Course{ID: "c1", Title: got.Title, Status: StatusDraft})
	})

	course, err := c.CreateCourse(context.Background(), CourseInput{Title: "Intro", Duration: "1h30mn"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	if course.ID != "c1" || course.Status != StatusDraft {
		t.Errorf("course = %+v", course)
	}
	if got.Duration != "1h30mn" {
		t.Errorf("sent duration = %q", got.Duration)
	}
}

func TestBearerTokenHeader(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"with token", "abc", "Bearer abc"},
		{"without token", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if h := r.Header.Get("Authorization"); h != tt.want {
					t.Errorf("Authorization = %q, want %q", h, tt.want)
				}
				writeEnvelope(w, http.StatusOK, true, "", []Category{})
			}, WithTokenStore(NewMemoryTokenStore(tt.token)))
			if _, err := c.Categories(context.Background()); err != nil {
				t.Fatalf("Categories() error = %v", err)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		message     string
		data        any
		wantKind    ErrorKind
		wantDisplay string
	}{
		{
			name:        "field errors are flattened",
			status:      http.StatusBadRequest,
			message:     "Validation failed",
			data:        map[string]string{"title": "is required", "categoryId": "is required"},
			wantKind:    KindValidation,
			wantDisplay: "categoryId: is required, title: is required",
		},
		{
			name:        "general message shown as is",
			status:      http.StatusConflict,
			message:     "Course already published",
			wantKind:    KindServer,
			wantDisplay: "Course already published",
		},
		{
			name:        "empty message falls back",
			status:      http.StatusInternalServerError,
			wantKind:    KindServer,
			wantDisplay: FallbackMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, false, tt.message, tt.data)
			})
			_, err := c.UpdateCourse(context.Background(), "c1", CourseInput{})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", apiErr.Kind, tt.wantKind)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if got := DisplayMessage(err); got != tt.wantDisplay {
				t.Errorf("DisplayMessage() = %q, want %q", got, tt.wantDisplay)
			}
		})
	}
}

func TestSuccessFalseWith200IsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, false, "Nope", nil)
	})
	_, err := c.PublishCourse(context.Background(), "c1")
	if DisplayMessage(err) != "Nope" {
		t.Errorf("DisplayMessage() = %q", DisplayMessage(err))
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	_, err := c.GetCourseForEditing(context.Background(), "c1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindServer || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("error = %#v", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url+"/api", WithUnauthorizedHandler(func(context.Context) {}))
	_, err := c.Categories(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindTransport {
		t.Fatalf("error = %v, want transport error", err)
	}
	if got := DisplayMessage(err); got != TransportMessage {
		t.Errorf("DisplayMessage() = %q", got)
	}
}

func TestUnauthorizedHandlerRunsOnce(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "Unauthorized", nil)
	}, WithUnauthorizedHandler(func(context.Context) { calls++ }))

	_, err := c.MyCourses(context.Background(), PageQuery{})
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized(%v) = false", err)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestDefaultUnauthorizedClearsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "Unauthorized", nil)
	}))
	defer srv.Close()

	store := NewMemoryTokenStore("expired")
	c := New(srv.URL, WithTokenStore(store))
	if _, err := c.Me(context.Background()); err == nil {
		t.Fatal("Me() error = nil")
	}
	if store.Token() != "" {
		t.Errorf("token = %q, want cleared", store.Token())
	}
}

func TestUploadLessonVideoMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/courses/lessons/l1/video" {
			t.Errorf("path = %s", r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		if hdr.Filename != "intro.mp4" || string(body) != "video-bytes" {
			t.Errorf("file = %s %q", hdr.Filename, body)
		}
		if ct := hdr.Header.Get("Content-Type"); ct != "video/mp4" {
			t.Errorf("part Content-Type = %q", ct)
		}
		writeEnvelope(w, http.StatusOK, true, "", Lesson{ID: "l1", VideoURL: "/uploads/l1.mp4"})
	})

	lesson, err := c.UploadLessonVideo(context.Background(), "l1", File{Name: "intro.mp4", ContentType: "video/mp4", Data: []byte("video-bytes")})
	if err != nil {
		t.Fatalf("UploadLessonVideo() error = %v", err)
	}
	if lesson.VideoURL != "/uploads/l1.mp4" {
		t.Errorf("VideoURL = %q", lesson.VideoURL)
	}
}

func TestDeleteCourseWithoutData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		writeEnvelope(w, http.StatusOK, true, "Course deleted", nil)
	})
	if err := c.DeleteCourse(context.Background(), "c1"); err != nil {
		t.Fatalf("DeleteCourse() error = %v", err)
	}
}

func TestLoginStoresToken(t *testing.T) {
	store := NewMemoryTokenStore("")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "", AuthResult{Token: "jwt", User: User{ID: "u1", Role: "ADMIN"}})
	}, WithTokenStore(store))

	res, err := c.Login(context.Background(), "a@b.c", "password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.User.ID != "u1" || store.Token() != "jwt" {
		t.Errorf("res = %+v, token = %q", res, store.Token())
	}
}

func TestListQueries(t *testing.T) {
	tests := []struct {
		name  string
		call  func(*Client) error
		path  string
		query string
	}{
		{
			name:  "my courses paging",
			call:  func(c *Client) error { _, err := c.MyCourses(context.Background(), PageQuery{Page: 2, Size: 5}); return err },
			path:  "/api/admin/courses/my-courses",
			query: "page=2&size=5",
		},
		{
			name:  "popular with limit",
			call:  func(c *Client) error { _, err := c.PopularCourses(context.Background(), 3); return err },
			path:  "/api/courses/public/popular",
			query: "limit=3",
		},
		{
			name:  "latest default limit",
			call:  func(c *Client) error { _, err := c.LatestCourses(context.Background(), 0); return err },
			path:  "/api/courses/public/latest",
			query: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.path || r.URL.RawQuery != tt.query {
					t.Errorf("url = %s?%s", r.URL.Path, r.URL.RawQuery)
				}
				if strings.HasSuffix(r.URL.Path, "my-courses") {
					writeEnvelope(w, http.StatusOK, true, "", Page[Course]{Content: []Course{}})
					return
				}
				writeEnvelope(w, http.StatusOK, true, "", []Course{})
			})
			if err := tt.call(c); err != nil {
				t.Fatalf("call error = %v", err)
			}
		})
	}
}

func TestFileTokenStore(t *testing.T) {
	s := &FileTokenStore{Path: t.TempDir() + "/nested/token"}
	if s.Token() != "" {
		t.Fatal("fresh store has a token")
	}
	if err := s.SetToken("abc"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	if s.Token() != "abc" {
		t.Errorf("Token() = %q", s.Token())
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}
