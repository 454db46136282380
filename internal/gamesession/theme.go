package gamesession

import (
	"context"
	"time"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/imagesvc"
)

// applyTheme is the set_theme tool's implementation (§4.7.6): debounces
// identical moods fired within the configured window, fetches a
// background image (never failing the call on an image-service error),
// persists the new theme, and emits theme_change.
func (s *Session) applyTheme(mood, genre, region, imagePrompt string, forceGenerate bool) (string, error) {
	s.themeMu.Lock()
	now := time.Now()
	if mood == s.lastTheme.mood && now.Sub(s.lastTheme.at) < s.cfg.ThemeDebounce {
		s.themeMu.Unlock()
		return "debounced: identical theme requested too soon", nil
	}
	s.lastTheme.mood = mood
	s.lastTheme.at = now
	s.themeMu.Unlock()

	var backgroundURL *string
	if s.imageSvc != nil {
		url, err := s.imageSvc.Fetch(context.Background(), imagesvc.Request{
			Mood: mood, Genre: genre, Region: region, Prompt: imagePrompt, ForceGenerate: forceGenerate,
		})
		if err == nil && url != "" {
			backgroundURL = &url
		}
	}

	theme := adventure.Theme{Mood: mood, Genre: genre, Region: region, BackgroundURL: backgroundURL}
	if err := s.handle.UpdateTheme(theme); err != nil {
		return "", err
	}
	if s.events.ThemeChange != nil {
		s.events.ThemeChange(theme)
	}
	return "theme updated", nil
}
