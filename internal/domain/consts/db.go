package consts

// Database tables
const (
	DBHistory = "download_history"
)

// download_history columns
const (
	QHistID        = "id"
	QHistPlatform  = "platform"
	QHistCourseID  = "course_id"
	QHistModuleKey = "module_key"
	QHistLessonKey = "lesson_key"
	QHistCategory  = "category"
	QHistItemKey   = "item_key"
	QHistTitle     = "title"
	QHistPath      = "path"
	QHistSuccess   = "success"
	QHistPublished = "published_at"
	QHistCreatedAt = "created_at"
	QHistUpdatedAt = "updated_at"
)
