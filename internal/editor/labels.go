package editor

import "baobab_academy/internal/apiclient"

// Notices shown to the author after a confirmed change.
const (
	MsgCourseCreated   = "Cours créé avec succès"
	MsgCourseUpdated   = "Cours mis à jour"
	MsgChapterAdded    = "Chapitre ajouté"
	MsgLessonAdded     = "Leçon ajoutée"
	MsgCoverUploaded   = "Image de couverture téléversée"
	MsgVideoUploaded   = "Vidéo téléversée"
	MsgCoursePublished = "Cours publié"
	MsgCourseDeleted   = "Cours supprimé"
)

var statusLabels = map[apiclient.Status]string{
	apiclient.StatusDraft:     "Brouillon",
	apiclient.StatusPublished: "Publié",
	apiclient.StatusArchived:  "Archivé",
}

var levelLabels = map[apiclient.Level]string{
	apiclient.LevelBeginner:     "Débutant",
	apiclient.LevelIntermediate: "Intermédiaire",
	apiclient.LevelAdvanced:     "Avancé",
}

var contentTypeLabels = map[apiclient.ContentType]string{
	apiclient.ContentText:     "Texte",
	apiclient.ContentVideo:    "Vidéo",
	apiclient.ContentDocument: "Document",
}

// StatusLabel returns the display label, or the raw value when unknown.
func StatusLabel(s apiclient.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func LevelLabel(l apiclient.Level) string {
	if label, ok := levelLabels[l]; ok {
		return label
	}
	return string(l)
}

func ContentTypeLabel(t apiclient.ContentType) string {
	if l, ok := contentTypeLabels[t]; ok {
		return l
	}
	return string(t)
}
