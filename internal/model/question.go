package model

import "time"

// Default identity recorded on questions submitted without a name or email.
const (
	AnonymousName  = "Anonymous"
	AnonymousEmail = "anonymous@example.com"
)

// Question is a question submitted by a student, optionally answered later.
//
// StudentName and StudentEmail are a snapshot taken at submission time, not a
// reference to a User row. Answer is only meaningful when IsAnswered is true;
// the service keeps the two consistent on update.
type Question struct {
	ID           string    `json:"id"               db:"id"`
	Question     string    `json:"question"         db:"question"`
	StudentName  string    `json:"studentName"      db:"student_name"`
	StudentEmail string    `json:"studentEmail"     db:"student_email"`
	IsAnswered   bool      `json:"isAnswered"       db:"is_answered"`
	Answer       string    `json:"answer,omitempty" db:"answer"`
	AskedAt      time.Time `json:"askedAt"          db:"asked_at"`
}

// QuestionUpdate carries the fields of a partial update. A nil pointer means
// "leave unchanged".
type QuestionUpdate struct {
	Question   *string
	Answer     *string
	IsAnswered *bool
}
