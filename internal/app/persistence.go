package app

import (
	"context"

	"github.com/andyrewlee/tprompt/internal/config"
	"github.com/andyrewlee/tprompt/internal/history"
	"github.com/andyrewlee/tprompt/internal/logging"
)

// saveSession writes a finished session off the UI goroutine.
func (a *App) saveSession(s history.Session) {
	if a.history == nil {
		return
	}
	store := a.history
	a.saves.Go("history-record", func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := store.Record(ctx, s); err != nil {
			logging.Warn("record session %s: %v", s.ID, err)
			return
		}
		logging.Debug("recorded session %s (%.0f%%)", s.ID, s.MaxProgress*100)
	})
}

func (a *App) savePreferences(p config.Preferences) {
	a.cfg.Preferences = p
	if err := a.cfg.SavePreferences(); err != nil {
		logging.Warn("save preferences: %v", err)
	}
}

func (a *App) saveGeometry(g config.Geometry) {
	a.cfg.Geometry = g
	if err := a.cfg.SaveGeometry(); err != nil {
		logging.Warn("save geometry: %v", err)
	}
}
