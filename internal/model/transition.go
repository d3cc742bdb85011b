package model

// Transition records a level state change applied by the sync engine
type Transition struct {
	From LevelState
	To   LevelState
}

// EvaluateTransition checks the room's current stage against the transition
// table and applies the single matching edge, if any. It returns the applied
// transition or nil.
//
// Edges:
//
//	waiting        -> intro          when every member has a character
//	intro, study   -> challenge      when every member is ready
//	challenge      -> level_complete when every member has submitted
//	level_complete -> intro          when every member is ready (advances level)
//
// Evaluation is skipped entirely for an empty room: the predicates are
// vacuously true over an empty membership set and must not fire while the
// triggering player is mid-removal.
func (r *Room) EvaluateTransition() *Transition {
	if r.IsEmpty() {
		return nil
	}

	from := r.Game.LevelState
	switch from {
	case LevelStateWaiting:
		if r.AllCharactersSelected() {
			r.Game.LevelState = LevelStateIntro
			return &Transition{From: from, To: LevelStateIntro}
		}
	case LevelStateIntro, LevelStateStudy:
		if r.AllReady() {
			r.ResetReadiness()
			r.ResetSubmissions()
			r.Game.LevelState = LevelStateChallenge
			return &Transition{From: from, To: LevelStateChallenge}
		}
	case LevelStateChallenge:
		if r.AllSubmitted() {
			r.ResetReadiness()
			r.ResetSubmissions()
			r.Game.LevelState = LevelStateLevelComplete
			return &Transition{From: from, To: LevelStateLevelComplete}
		}
	case LevelStateLevelComplete:
		if r.AllReady() {
			r.ResetReadiness()
			r.Game.LevelIndex++
			// A total-levels bound (and a terminal game_end state) is a
			// deliberate extension point; the level index currently grows
			// without limit.
			r.Game.LevelState = LevelStateIntro
			return &Transition{From: from, To: LevelStateIntro}
		}
	}
	return nil
}
