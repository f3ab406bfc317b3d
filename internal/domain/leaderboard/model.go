package leaderboard

import (
	"sort"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/domain/user"
)

// Row is one ranked leaderboard entry.
type Row struct {
	Position   int     `json:"position"`
	UserID     int64   `json:"userId"`
	Name       string  `json:"name"`
	Points     int     `json:"points"`
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Accuracy   float64 `json:"accuracy"`
	FullHouses int     `json:"fullHouses"`
	Blanks     int     `json:"blanks"`
}

// Less orders by points, full houses, accuracy, name (case-insensitive), then id.
func Less(a, b user.User) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.FullHouses != b.FullHouses {
		return a.FullHouses > b.FullHouses
	}
	if accA, accB := a.Accuracy(), b.Accuracy(); accA != accB {
		return accA > accB
	}
	if nameA, nameB := strings.ToLower(a.Name), strings.ToLower(b.Name); nameA != nameB {
		return nameA < nameB
	}
	return a.ID < b.ID
}

// Rank returns positions starting at 1. The input slice is not modified.
func Rank(users []user.User) []Row {
	sorted := append([]user.User(nil), users...)
	sort.SliceStable(sorted, func(i, j int) bool { return Less(sorted[i], sorted[j]) })

	rows := make([]Row, 0, len(sorted))
	for i, item := range sorted {
		rows = append(rows, Row{
			Position:   i + 1,
			UserID:     item.ID,
			Name:       item.Name,
			Points:     item.Points,
			Correct:    item.CorrectResults,
			Incorrect:  item.IncorrectResults,
			Accuracy:   item.Accuracy(),
			FullHouses: item.FullHouses,
			Blanks:     item.Blanks,
		})
	}
	return rows
}
