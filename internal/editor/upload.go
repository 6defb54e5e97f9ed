package editor

import (
	"baobab_academy/internal/apiclient"
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// StageCoverImage holds a cover locally and builds its preview. Nothing is
// sent until UploadCoverImage, or until the first create succeeds.
func (e *Editor) StageCoverImage(name, contentType string, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.openLocked(); err != nil {
		return err
	}
	if e.state.Uploading {
		return ErrBusy
	}
	e.state.StagedCover = &apiclient.File{
		Name:        name,
		ContentType: contentType,
		Data:        append([]byte(nil), data...),
	}
	e.state.CoverPreview = previewURI(contentType, data)
	return nil
}

func previewURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// UploadCoverImage sends the staged cover for a saved course.
func (e *Editor) UploadCoverImage(ctx context.Context) error {
	e.mu.Lock()
	courseID, gen, err := e.persistedLocked()
	if err == nil && e.state.StagedCover == nil {
		err = ErrNoStagedCover
	}
	if err == nil {
		e.state.Uploading = true
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return e.uploadCover(ctx, gen, courseID)
}

// uploadCover runs with Uploading already claimed by the caller. It clears
// the staged file either way; on failure the preview goes back to the last
// persisted cover.
func (e *Editor) uploadCover(ctx context.Context, gen uint64, courseID string) error {
	e.mu.Lock()
	if e.staleLocked(gen, "upload cover") {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	staged := e.state.StagedCover
	if staged == nil {
		e.state.Uploading = false
		e.mu.Unlock()
		return ErrNoStagedCover
	}
	file := *staged
	e.mu.Unlock()

	course, err := e.api.UploadCourseImage(ctx, courseID, file)

	e.mu.Lock()
	if e.staleLocked(gen, "upload cover") {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	e.state.Uploading = false
	e.state.StagedCover = nil
	if err != nil {
		e.state.CoverPreview = e.state.Course.CoverImage
		e.mu.Unlock()
		e.log.Warn("Cover upload failed", zap.String("course_id", courseID), zap.Error(err))
		return e.fail(err)
	}
	e.state.replaceCourse(course)
	e.state.CoverPreview = e.state.Course.CoverImage
	e.mu.Unlock()

	e.ntf.Success(MsgCoverUploaded)
	return nil
}

// CanUploadVideo reports whether a lesson is offered a video upload: it must
// be a VIDEO lesson without a video yet.
func CanUploadVideo(l apiclient.Lesson) bool {
	return l.ContentType == apiclient.ContentVideo && l.VideoURL == ""
}

// UploadLessonVideo uploads immediately, without staging. The response only
// patches videoUrl on the lesson with the same id.
func (e *Editor) UploadLessonVideo(ctx context.Context, lessonID string, f apiclient.File) error {
	if len(f.Data) == 0 {
		return ErrEmptyFile
	}

	e.mu.Lock()
	_, gen, err := e.persistedLocked()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	ci, li, ok := e.state.findLesson(lessonID)
	if !ok {
		e.mu.Unlock()
		return ErrLessonNotFound
	}
	if !CanUploadVideo(e.state.Course.Chapters[ci].Lessons[li]) {
		e.mu.Unlock()
		return ErrVideoNotAllowed
	}
	e.state.Uploading = true
	e.mu.Unlock()

	lesson, err := e.api.UploadLessonVideo(ctx, lessonID, f)

	e.mu.Lock()
	if e.staleLocked(gen, "upload video") {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	e.state.Uploading = false
	if err == nil && (lesson == nil || lesson.VideoURL == "") {
		err = &apiclient.APIError{Kind: apiclient.KindServer, Message: "La réponse ne contient pas d'URL vidéo"}
	}
	if err != nil {
		e.mu.Unlock()
		e.log.Warn("Video upload failed", zap.String("lesson_id", lessonID), zap.Error(err))
		return e.fail(err)
	}
	e.state.patchLessonVideo(lessonID, lesson.VideoURL)
	e.mu.Unlock()

	e.ntf.Success(MsgVideoUploaded)
	return nil
}
