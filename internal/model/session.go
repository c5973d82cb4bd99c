package model

import "time"

// Capacity bounds for a prediction session.
const (
	MinCapacity = 2
	MaxCapacity = 20
)

// Prediction is a single participant's answer, embedded in its session.
// AuthorName is snapshotted at submission time so display survives later
// profile changes.
type Prediction struct {
	ID          string    `json:"id" bson:"id"`
	AuthorID    string    `json:"authorId" bson:"authorId"`
	AuthorName  string    `json:"authorName" bson:"authorName"`
	Content     string    `json:"content" bson:"content"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}

// Session is one prediction challenge. Participants and Predictions are
// append-only; Complete is derived and recomputed after every mutation.
type Session struct {
	ID           string       `json:"id" bson:"_id"`
	Title        string       `json:"title" bson:"title"`
	Code         string       `json:"code" bson:"code"`
	Capacity     int          `json:"maxPlayers" bson:"maxPlayers"`
	CreatorID    string       `json:"creatorId" bson:"creatorId"`
	Participants []string     `json:"participants" bson:"participants"`
	Predictions  []Prediction `json:"predictions" bson:"predictions"`
	Complete     bool         `json:"isComplete" bson:"isComplete"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
}

// HasParticipant reports whether the actor has joined this session.
func (s *Session) HasParticipant(actorID string) bool {
	for _, p := range s.Participants {
		if p == actorID {
			return true
		}
	}
	return false
}

// HasPredicted reports whether the actor already submitted a prediction.
func (s *Session) HasPredicted(actorID string) bool {
	for _, p := range s.Predictions {
		if p.AuthorID == actorID {
			return true
		}
	}
	return false
}

// RecomputeComplete re-derives the completion flag from current counts.
// Never latches: a join after everyone predicted flips it back to false.
func (s *Session) RecomputeComplete() {
	s.Complete = len(s.Participants) > 0 && len(s.Predictions) == len(s.Participants)
}

// Actor is the authenticated identity attached to every operation.
type Actor struct {
	ID   string
	Name string
}

// PredictionView is a prediction as shown to a specific requester.
type PredictionView struct {
	ID          string    `json:"id"`
	AuthorName  string    `json:"username"`
	Content     string    `json:"content"`
	SubmittedAt time.Time `json:"createdAt"`
	IsSelf      bool      `json:"isCurrentUser"`
}

// SessionView is the projection returned to a participant. Predictions is
// populated only when the requester has predicted or the session is
// complete.
type SessionView struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Code             string           `json:"code"`
	Capacity         int              `json:"maxPlayers"`
	Participants     int              `json:"participants"`
	Predictions      []PredictionView `json:"predictions,omitempty"`
	Complete         bool             `json:"isComplete"`
	UserHasPredicted bool             `json:"userHasPredicted"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// SessionSummary is a counts-only listing entry; prediction content is
// never included here.
type SessionSummary struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Code             string    `json:"code"`
	Capacity         int       `json:"maxPlayers"`
	Participants     int       `json:"participants"`
	PredictionsCount int       `json:"predictionsCount"`
	Complete         bool      `json:"isComplete"`
	UserHasPredicted bool      `json:"userHasPredicted"`
	CreatedAt        time.Time `json:"createdAt"`
}

// PredictionAck acknowledges a submission and carries the recomputed
// completion flag.
type PredictionAck struct {
	Prediction PredictionView `json:"prediction"`
	Complete   bool           `json:"isComplete"`
}

// View projects the session for the given actor, applying the reveal
// rule: others' predictions are visible only after the actor has
// submitted their own, or once the session is complete.
func (s *Session) View(actorID string) *SessionView {
	hasPredicted := s.HasPredicted(actorID)

	v := &SessionView{
		ID:               s.ID,
		Title:            s.Title,
		Code:             s.Code,
		Capacity:         s.Capacity,
		Participants:     len(s.Participants),
		Complete:         s.Complete,
		UserHasPredicted: hasPredicted,
		CreatedAt:        s.CreatedAt,
	}

	if hasPredicted || s.Complete {
		v.Predictions = make([]PredictionView, 0, len(s.Predictions))
		for _, p := range s.Predictions {
			v.Predictions = append(v.Predictions, PredictionView{
				ID:          p.ID,
				AuthorName:  p.AuthorName,
				Content:     p.Content,
				SubmittedAt: p.SubmittedAt,
				IsSelf:      p.AuthorID == actorID,
			})
		}
	}

	return v
}

// Summary projects the counts-only listing entry for the given actor.
func (s *Session) Summary(actorID string) SessionSummary {
	return SessionSummary{
		ID:               s.ID,
		Title:            s.Title,
		Code:             s.Code,
		Capacity:         s.Capacity,
		Participants:     len(s.Participants),
		PredictionsCount: len(s.Predictions),
		Complete:         s.Complete,
		UserHasPredicted: s.HasPredicted(actorID),
		CreatedAt:        s.CreatedAt,
	}
}
