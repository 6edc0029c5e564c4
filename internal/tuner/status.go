package tuner

import "time"

// statusLine holds the newest message from either the UI or the bake job.
type statusLine struct {
	text string
	at   time.Time
}

// set replaces the text unless it is empty or older than the current one.
func (s *statusLine) set(text string, at time.Time) {
	if text == "" || at.Before(s.at) {
		return
	}
	s.text = text
	s.at = at
}
