package models

// Status is the lifecycle position of an application.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusResponded   Status = "responded"
	StatusRejected    Status = "rejected"
	StatusAppealed    Status = "appealed"
)

var validStatuses = map[Status]bool{
	StatusDraft:       true,
	StatusSubmitted:   true,
	StatusUnderReview: true,
	StatusResponded:   true,
	StatusRejected:    true,
	StatusAppealed:    true,
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) String() string {
	return string(s)
}

// AppealStatus tracks the appeal filed against an application's outcome.
type AppealStatus string

const (
	AppealStatusNone     AppealStatus = "none"
	AppealStatusPending  AppealStatus = "pending"
	AppealStatusApproved AppealStatus = "approved"
	AppealStatusRejected AppealStatus = "rejected"
)
