package model

import (
	"fmt"
	"strings"
)

// Difficulty is the numeric difficulty code stored on a lesson version.
type Difficulty int

const (
	DifficultyBeginner     Difficulty = 1
	DifficultyIntermediate Difficulty = 2
	DifficultyAdvanced     Difficulty = 3
	DifficultyProfessional Difficulty = 4
)

var difficultyLabels = map[Difficulty]string{
	DifficultyBeginner:     "Beginner",
	DifficultyIntermediate: "Intermediate",
	DifficultyAdvanced:     "Advanced",
	DifficultyProfessional: "Professional",
}

// Valid reports whether d is one of the four known codes.
func (d Difficulty) Valid() bool {
	_, ok := difficultyLabels[d]
	return ok
}

// Label returns the display label. Unknown codes read as Intermediate.
func (d Difficulty) Label() string {
	if l, ok := difficultyLabels[d]; ok {
		return l
	}
	return difficultyLabels[DifficultyIntermediate]
}

func (d Difficulty) String() string { return d.Label() }

// ParseDifficulty maps a display label (case-insensitive) or a numeric
// string to its code.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.TrimSpace(s)
	for code, label := range difficultyLabels {
		if strings.EqualFold(label, s) || fmt.Sprint(int(code)) == s {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q (valid: Beginner, Intermediate, Advanced, Professional)", s)
}
