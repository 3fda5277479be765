package models

import (
	"database/sql"
	"time"
)

// Quiz is the database row shape backing domain.Quiz.
type Quiz struct {
	ID          string         `db:"id"`
	CreatorID   string         `db:"creator_id"`
	Title       string         `db:"title"`
	Topic       sql.NullString `db:"topic"`
	Description sql.NullString `db:"description"`
	Difficulty  string         `db:"difficulty"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Question is the database row shape backing domain.Question.
type Question struct {
	ID            string         `db:"id"`
	QuizID        string         `db:"quiz_id"`
	Text          string         `db:"text"`
	OptionA       sql.NullString `db:"option_a"`
	OptionB       sql.NullString `db:"option_b"`
	OptionC       sql.NullString `db:"option_c"`
	OptionD       sql.NullString `db:"option_d"`
	CorrectOption string         `db:"correct_option"`
	Explanation   sql.NullString `db:"explanation"`
	AIGenerated   int            `db:"ai_generated"`
	CreatedAt     time.Time      `db:"created_at"`
}
