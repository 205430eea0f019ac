package constant

import "time"

const (
	// Reserved clarification option values. The agent uses these to ask the
	// client to open a widget instead of sending plain text back.
	ClarificationDatePicker = "show_date_picker"
	ClarificationUpload     = "Upload"

	// Delay before the upload directive should take effect on the client.
	UploadDirectiveDelay = 500 * time.Millisecond

	WelcomeMessage = "Hi! I'm Emily, your AI marketing assistant. I can help you " +
		"generate content, schedule posts, and manage your leads. What would you like to do today?"

	DefaultAgentName = "Emily"

	// Subjects for the record feed.
	SubjectRecordCreated = "events.record.created"

	// Topic for the scheduling pipeline.
	SchedulePublishTopic = "SCHEDULE_PUBLISH"
)
