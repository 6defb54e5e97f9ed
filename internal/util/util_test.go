package util

import (
	"baobab_academy/internal/model"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeEnvelope(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("invalid json %q: %v", body, err)
	}
	return out
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, "ok", gin.H{"id": "c1"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	env := decodeEnvelope(t, w.Body.Bytes())
	if env["success"] != true {
		t.Errorf("success = %v, want true", env["success"])
	}
	if env["message"] != "ok" {
		t.Errorf("message = %v, want ok", env["message"])
	}
	if _, err := time.Parse(time.RFC3339, env["timestamp"].(string)); err != nil {
		t.Errorf("timestamp not RFC3339: %v", env["timestamp"])
	}
	data := env["data"].(map[string]interface{})
	if data["id"] != "c1" {
		t.Errorf("data.id = %v", data["id"])
	}
}

func TestHandleServiceErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrCourseNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", ErrNotCourseOwner), http.StatusForbidden},
		{ErrCourseWithoutLessons, http.StatusBadRequest},
		{ErrAlreadyEnrolled, http.StatusConflict},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleServiceError(c, tc.err)

		if w.Code != tc.want {
			t.Errorf("HandleServiceError(%v) status = %d, want %d", tc.err, w.Code, tc.want)
		}
		env := decodeEnvelope(t, w.Body.Bytes())
		if env["success"] != false {
			t.Errorf("success = %v, want false", env["success"])
		}
	}
}

type bindTarget struct {
	Title string `json:"title" binding:"required,min=2"`
	Level string `json:"level" binding:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
}

func TestBindErrorReturnsFieldMap(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"title":"x","level":"EXPERT"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req bindTarget
	err := c.ShouldBindJSON(&req)
	if err == nil {
		t.Fatal("expected binding error")
	}
	BindError(c, err)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	env := decodeEnvelope(t, w.Body.Bytes())
	data, ok := env["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("data is not a field map: %v", env["data"])
	}
	if !strings.Contains(data["title"].(string), "at least 2") {
		t.Errorf("title message = %v", data["title"])
	}
	if !strings.Contains(data["level"].(string), "one of") {
		t.Errorf("level message = %v", data["level"])
	}
}

func TestBindErrorPlainMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	BindError(c, fmt.Errorf("unexpected EOF"))

	env := decodeEnvelope(t, w.Body.Bytes())
	if env["message"] != "unexpected EOF" {
		t.Errorf("message = %v", env["message"])
	}
	if _, ok := env["data"]; ok {
		t.Errorf("data should be absent, got %v", env["data"])
	}
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "a@b.c", Role: model.RoleAdmin}
	user.ID = "u-1"

	token, err := GenerateJWT(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != model.RoleAdmin || claims.Email != "a@b.c" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ParseJWT(token, "other"); err == nil {
		t.Error("expected signature error with wrong secret")
	}

	expired, _ := GenerateJWT(user, "secret", -time.Minute)
	if _, err := ParseJWT(expired, "secret"); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateMimeType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000000000000")
	mime, err := ValidateMimeType(bytes.NewReader(png), []string{MimeImage})
	if err != nil {
		t.Fatalf("png rejected: %v", err)
	}
	if !IsImage(mime) {
		t.Errorf("IsImage(%q) = false", mime)
	}

	if _, err := ValidateMimeType(strings.NewReader("plain text"), []string{MimeImage}); err == nil {
		t.Error("text accepted as image")
	}
}

func TestHasExtension(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"cover.PNG", true},
		{"cover.jpeg", true},
		{"cover.bmp", false},
		{"cover", false},
	}
	for _, tc := range cases {
		if got := HasExtension(tc.name, AllowedImageExtensions); got != tc.want {
			t.Errorf("HasExtension(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClampInt(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{-5, 0, 100, 0},
		{50, 0, 100, 50},
		{150, 0, 100, 100},
	}
	for _, tc := range cases {
		if got := ClampInt(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Errorf("ClampInt(%d, %d, %d) = %d, want %d", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestParseStreamReport(t *testing.T) {
	cases := []struct {
		name     string
		out      string
		duration float64
		wantErr  error
	}{
		{"format duration wins", `{"streams":[{"codec_type":"audio"},{"codec_type":"video","codec_name":"h264","width":1280,"height":720,"duration":"11.9"}],"format":{"duration":"12.04"}}`, 12.04, nil},
		{"stream duration fallback", `{"streams":[{"codec_type":"video","codec_name":"vp9","duration":"8.5"}],"format":{}}`, 8.5, nil},
		{"audio only", `{"streams":[{"codec_type":"audio"}],"format":{"duration":"30"}}`, 0, ErrInvalidVideo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := parseStreamReport(tc.out)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseStreamReport: %v", err)
			}
			if v.Duration != tc.duration {
				t.Errorf("duration = %v, want %v", v.Duration, tc.duration)
			}
		})
	}
	if _, err := parseStreamReport("not json"); err == nil {
		t.Error("expected decode error")
	}
}

func TestThumbnailOffset(t *testing.T) {
	cases := map[float64]string{0: "1", 1.5: "0", 5: "1", 10: "1", 95: "9"}
	for duration, want := range cases {
		if got := ThumbnailOffset(duration); got != want {
			t.Errorf("ThumbnailOffset(%v) = %q, want %q", duration, got, want)
		}
	}
}
