package notification

import "time"

// Domain events are handed to the notification service by the course,
// enrollment, review and announcement subsystems after their own writes have
// committed. Payloads carry the denormalized context needed for rendering so
// triggers stay free of relational lookups.

// CourseRef identifies a course and its instructor.
type CourseRef struct {
	ID             int64
	Title          string
	InstructorID   int64
	InstructorName string
}

// UserRef identifies a platform user by id and display name.
type UserRef struct {
	ID   int64
	Name string
}

// EnrollmentCreatedEvent fires when a student enrolls in a course.
type EnrollmentCreatedEvent struct {
	EnrollmentID int64
	Course       CourseRef
	Student      UserRef
}

// EnrollmentCompletedEvent fires when an enrollment is saved after its
// completion state may have changed. WasCompleted carries the state of the
// previously loaded record so the trigger can detect the actual transition.
type EnrollmentCompletedEvent struct {
	EnrollmentID int64
	Course       CourseRef
	Student      UserRef
	Progress     float64
	WasCompleted bool
	Completed    bool
}

// ActiveEnrollment is one non-completed enrollment of an updated course.
type ActiveEnrollment struct {
	EnrollmentID int64
	StudentID    int64
}

// CourseUpdatedEvent fires when a course record is saved. Created
// distinguishes the initial insert, which must not notify anyone.
type CourseUpdatedEvent struct {
	Course            CourseRef
	Created           bool
	ActiveEnrollments []ActiveEnrollment
}

// ReviewCreatedEvent fires when a new review is persisted.
type ReviewCreatedEvent struct {
	ReviewID    string
	Course      CourseRef
	Reviewer    UserRef
	Rating      float64
	ReviewTitle string
	Comment     string
}

// ReviewAnsweredEvent fires when a reply is appended to a review.
type ReviewAnsweredEvent struct {
	ReviewID      string
	Course        CourseRef
	ReviewAuthor  UserRef
	ReplyAuthorID int64
	ReplyText     string
	RepliedAt     time.Time
}

// AnnouncementCreatedEvent fires when a new announcement is persisted for a
// target user.
type AnnouncementCreatedEvent struct {
	AnnouncementID int64
	UserID         int64
	Title          string
	Body           string
	Type           string
	SentAt         *time.Time
}
