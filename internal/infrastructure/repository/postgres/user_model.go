package postgres

import "time"

type userTableModel struct {
	ID               int64     `db:"id"`
	Name             string    `db:"name"`
	Points           int       `db:"points"`
	CorrectResults   int       `db:"correct_results"`
	IncorrectResults int       `db:"incorrect_results"`
	FullHouses       int       `db:"full_houses"`
	Blanks           int       `db:"blanks"`
	CurrentWeek      int       `db:"current_week"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
