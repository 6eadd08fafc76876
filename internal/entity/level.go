package entity

// ExplanationLevel selects the audience an answer is written for.
type ExplanationLevel string

const (
	LevelChild         ExplanationLevel = "child"
	LevelTeenager      ExplanationLevel = "teenager"
	LevelUndergraduate ExplanationLevel = "undergraduate"
	LevelGraduate      ExplanationLevel = "graduate"
	LevelExpert        ExplanationLevel = "expert"
)

// Levels lists every supported level from simplest to most technical.
var Levels = []ExplanationLevel{
	LevelChild,
	LevelTeenager,
	LevelUndergraduate,
	LevelGraduate,
	LevelExpert,
}

func (l ExplanationLevel) IsValid() bool {
	switch l {
	case LevelChild, LevelTeenager, LevelUndergraduate, LevelGraduate, LevelExpert:
		return true
	}
	return false
}

func (l ExplanationLevel) String() string {
	return string(l)
}

type AvailableLevelsResponse struct {
	Levels       map[string]string `json:"levels"`
	DefaultLevel ExplanationLevel  `json:"default_level"`
}
