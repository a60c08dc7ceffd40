package gamification

// Counters are the per-user activity counts the score is derived from.
type Counters struct {
	BooksCompleted int64 `json:"books_completed"`
	TopicsCreated  int64 `json:"topics_created"`
	RepliesPosted  int64 `json:"replies_posted"`
	EventsAttended int64 `json:"events_attended"`
	Badges         int64 `json:"badges"`
}

// Score weights. The score is a plain weighted sum, recomputed on every
// read and never persisted.
const (
	weightBookCompleted = 10
	weightTopicCreated  = 5
	weightReplyPosted   = 2
	weightBadge         = 15
)

// Level is a derived tier, never stored.
type Level struct {
	Level     int    `json:"level"`
	Title     string `json:"title"`
	Score     int64  `json:"score"`
	MinScore  int64  `json:"min_score"`
	NextScore int64  `json:"next_score"` // -1 at the top tier
}

type tier struct {
	min   int64
	title string
}

// Ten ascending tiers. LevelForScore picks the highest tier whose minimum
// the score reaches.
var tiers = []tier{
	{0, "Newcomer"},
	{100, "Page Turner"},
	{200, "Avid Reader"},
	{300, "Contributor"},
	{500, "Discussion Regular"},
	{750, "Bookworm"},
	{1000, "Bibliophile"},
	{1500, "Club Veteran"},
	{2000, "Literary Luminary"},
	{3000, "Living Library"},
}

// ComputeScore folds the activity counters into the weighted score.
func ComputeScore(c Counters) int64 {
	return weightBookCompleted*c.BooksCompleted +
		weightTopicCreated*c.TopicsCreated +
		weightReplyPosted*c.RepliesPosted +
		weightBadge*c.Badges
}

// LevelForScore maps a score to its tier.
func LevelForScore(score int64) Level {
	if score < 0 {
		score = 0
	}
	idx := 0
	for i, t := range tiers {
		if score >= t.min {
			idx = i
		}
	}

	level := Level{
		Level:     idx + 1,
		Title:     tiers[idx].title,
		Score:     score,
		MinScore:  tiers[idx].min,
		NextScore: -1,
	}
	if idx+1 < len(tiers) {
		level.NextScore = tiers[idx+1].min
	}
	return level
}

// LevelFor is the full derivation: counters -> score -> tier.
func LevelFor(c Counters) Level {
	return LevelForScore(ComputeScore(c))
}
