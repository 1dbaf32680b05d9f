package notification

import (
	"context"
	"fmt"

	"learnhub/models"
	"learnhub/utils"

	"go.uber.org/zap"
)

// Domain event triggers. Each runs synchronously on the worker that performed
// the originating write, after that write has committed. Failures are logged
// at the trigger boundary and never propagate back to the domain operation.

// EnrollmentCreated notifies the instructor about the new student and welcomes
// the student to the course. Two independent records are created.
func (s *DefaultNotificationService) EnrollmentCreated(ctx context.Context, ev EnrollmentCreatedEvent) {
	logger := utils.GetLogger()
	studentName := s.resolveName(ctx, ev.Student.ID, ev.Student.Name)

	_, err := s.build(ctx, ev.Course.InstructorID, models.KindNewEnrollment,
		fmt.Sprintf("New enrollment in %s", ev.Course.Title),
		fmt.Sprintf("%s has enrolled in your course %q.", studentName, ev.Course.Title),
		map[string]any{
			"enrollment_id": ev.EnrollmentID,
			"course_id":     ev.Course.ID,
			"student_id":    ev.Student.ID,
			"student_name":  studentName,
		})
	if err != nil {
		logger.Error("notification: enrollment-created instructor record failed",
			zap.Int64("courseID", ev.Course.ID), zap.Error(err))
	}

	_, err = s.build(ctx, ev.Student.ID, models.KindCourseUpdated,
		fmt.Sprintf("Welcome to %s!", ev.Course.Title),
		fmt.Sprintf("You have successfully enrolled in the course %q. Start learning now!", ev.Course.Title),
		map[string]any{
			"enrollment_id":   ev.EnrollmentID,
			"course_id":       ev.Course.ID,
			"instructor_id":   ev.Course.InstructorID,
			"instructor_name": s.resolveName(ctx, ev.Course.InstructorID, ev.Course.InstructorName),
			"action":          "enrollment_confirmed",
		})
	if err != nil {
		logger.Error("notification: enrollment-created student record failed",
			zap.Int64("studentID", ev.Student.ID), zap.Error(err))
	}
}

// EnrollmentCompleted notifies instructor and student when an enrollment
// transitions to completed. The before/after snapshots guard against firing on
// saves that did not change completion.
func (s *DefaultNotificationService) EnrollmentCompleted(ctx context.Context, ev EnrollmentCompletedEvent) {
	if ev.WasCompleted || !ev.Completed {
		return
	}
	logger := utils.GetLogger()
	studentName := s.resolveName(ctx, ev.Student.ID, ev.Student.Name)

	_, err := s.build(ctx, ev.Course.InstructorID, models.KindCourseCompleted,
		fmt.Sprintf("Course completed: %s", ev.Course.Title),
		fmt.Sprintf("%s has completed your course %q. Congratulations!", studentName, ev.Course.Title),
		map[string]any{
			"enrollment_id": ev.EnrollmentID,
			"course_id":     ev.Course.ID,
			"student_id":    ev.Student.ID,
			"student_name":  studentName,
			"progress":      ev.Progress,
		})
	if err != nil {
		logger.Error("notification: enrollment-completed instructor record failed",
			zap.Int64("courseID", ev.Course.ID), zap.Error(err))
	}

	_, err = s.build(ctx, ev.Student.ID, models.KindCourseUpdated,
		fmt.Sprintf("Congratulations! You completed %s", ev.Course.Title),
		fmt.Sprintf("You have successfully completed the course %q. Great work! You can now leave a review.", ev.Course.Title),
		map[string]any{
			"enrollment_id": ev.EnrollmentID,
			"course_id":     ev.Course.ID,
			"instructor_id": ev.Course.InstructorID,
			"progress":      ev.Progress,
			"action":        "course_completed",
		})
	if err != nil {
		logger.Error("notification: enrollment-completed student record failed",
			zap.Int64("studentID", ev.Student.ID), zap.Error(err))
	}
}

// CourseUpdated notifies every student with a non-completed enrollment. It
// never fires for the initial creation of a course.
func (s *DefaultNotificationService) CourseUpdated(ctx context.Context, ev CourseUpdatedEvent) {
	if ev.Created {
		return
	}
	logger := utils.GetLogger()

	for _, enr := range ev.ActiveEnrollments {
		_, err := s.build(ctx, enr.StudentID, models.KindCourseUpdated,
			fmt.Sprintf("Update in %s", ev.Course.Title),
			fmt.Sprintf("The course %q has been updated. Check out the new content.", ev.Course.Title),
			map[string]any{
				"course_id":     ev.Course.ID,
				"enrollment_id": enr.EnrollmentID,
				"instructor_id": ev.Course.InstructorID,
				"action":        "content_updated",
			})
		if err != nil {
			logger.Error("notification: course-updated record failed",
				zap.Int64("studentID", enr.StudentID), zap.Int64("courseID", ev.Course.ID), zap.Error(err))
		}
	}
}

// ReviewCreated notifies the course instructor about a freshly posted review.
func (s *DefaultNotificationService) ReviewCreated(ctx context.Context, ev ReviewCreatedEvent) {
	logger := utils.GetLogger()
	reviewerName := s.resolveName(ctx, ev.Reviewer.ID, ev.Reviewer.Name)

	_, err := s.build(ctx, ev.Course.InstructorID, models.KindNewReview,
		fmt.Sprintf("New review in %s", ev.Course.Title),
		fmt.Sprintf("%s left a %.1f-star review on your course %q: %q", reviewerName, ev.Rating, ev.Course.Title, excerpt(ev.Comment, 100)),
		map[string]any{
			"review_id":    ev.ReviewID,
			"course_id":    ev.Course.ID,
			"user_id":      ev.Reviewer.ID,
			"rating":       ev.Rating,
			"review_title": ev.ReviewTitle,
			"comment":      excerpt(ev.Comment, 200),
		})
	if err != nil {
		logger.Error("notification: review-created record failed",
			zap.Int64("courseID", ev.Course.ID), zap.Error(err))
	}
}

// ReviewAnswered notifies the review author about a reply. A reply by the
// author themselves produces nothing.
func (s *DefaultNotificationService) ReviewAnswered(ctx context.Context, ev ReviewAnsweredEvent) {
	if ev.ReplyAuthorID == ev.ReviewAuthor.ID {
		return
	}
	logger := utils.GetLogger()

	_, err := s.build(ctx, ev.ReviewAuthor.ID, models.KindReviewReply,
		fmt.Sprintf("Reply to your review in %s", ev.Course.Title),
		fmt.Sprintf("The instructor of %q replied to your review: %q", ev.Course.Title, excerpt(ev.ReplyText, 100)),
		map[string]any{
			"review_id":     ev.ReviewID,
			"course_id":     ev.Course.ID,
			"instructor_id": ev.Course.InstructorID,
			"reply":         ev.ReplyText,
			"replied_at":    ev.RepliedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	if err != nil {
		logger.Error("notification: review-answered record failed",
			zap.Int64("reviewAuthorID", ev.ReviewAuthor.ID), zap.Error(err))
	}
}

// AnnouncementCreated notifies the announcement's target user.
func (s *DefaultNotificationService) AnnouncementCreated(ctx context.Context, ev AnnouncementCreatedEvent) {
	logger := utils.GetLogger()

	extra := map[string]any{
		"announcement_id":   ev.AnnouncementID,
		"title":             ev.Title,
		"body":              ev.Body,
		"announcement_type": ev.Type,
	}
	if ev.SentAt != nil {
		extra["sent_at"] = ev.SentAt.Format("2006-01-02T15:04:05Z07:00")
	}

	_, err := s.build(ctx, ev.UserID, models.KindNewAnnouncement,
		fmt.Sprintf("New announcement: %s", ev.Title),
		excerpt(ev.Body, 200),
		extra)
	if err != nil {
		logger.Error("notification: announcement-created record failed",
			zap.Int64("userID", ev.UserID), zap.Error(err))
	}
}
