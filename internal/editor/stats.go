package editor

import "baobab_academy/internal/apiclient"

// Stats summarises the course content for the editor sidebar.
type Stats struct {
	Chapters      int
	Lessons       int
	ByType        map[apiclient.ContentType]int
	VideosMissing int
	TotalMinutes  int
}

func (s *State) Stats() Stats {
	st := Stats{
		Chapters:     len(s.Course.Chapters),
		ByType:       make(map[apiclient.ContentType]int),
		TotalMinutes: totalMinutes(s.Form.Hours, s.Form.Minutes),
	}
	for _, ch := range s.Course.Chapters {
		st.Lessons += len(ch.Lessons)
		for _, l := range ch.Lessons {
			st.ByType[l.ContentType]++
			if l.ContentType == apiclient.ContentVideo && l.VideoURL == "" {
				st.VideosMissing++
			}
		}
	}
	return st
}
