package impact

// Level is the coarse impact severity bucket. Ordering is
// none < low < medium < high; Rank makes the ordering explicit.
type Level string

const (
	LevelNone   Level = "none"
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ParseLevel validates a level tag.
func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelNone, LevelLow, LevelMedium, LevelHigh:
		return Level(s), true
	}
	return "", false
}

// Rank returns the level's position in the severity ordering.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	}
	return 0
}

// Method identifies how the analysis was performed.
type Method string

const (
	MethodRuleBased Method = "rule_based"
	MethodMLModel   Method = "ml_model"
	MethodHybrid    Method = "hybrid"
)

// ParseMethod validates an analysis method tag.
func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodRuleBased, MethodMLModel, MethodHybrid:
		return Method(s), true
	}
	return "", false
}
