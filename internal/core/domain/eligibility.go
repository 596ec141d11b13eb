package domain

import "time"

// IsVisible reports whether the caller may know the election exists.
// Hidden and draft elections are only visible to admins.
func IsVisible(e *Election, roles Roles) bool {
	if roles.IsAdmin() {
		return true
	}
	return !e.Hidden && e.Status != StatusDraft
}

// IsEligible decides whether a caller with the given roles may vote in e.
func IsEligible(e *Election, roles Roles) bool {
	switch e.Eligibility {
	case EligibilityAll:
		return true
	case EligibilityAdmins:
		return roles.IsAdmin()
	case EligibilityMembers:
		return roles.IsMember()
	}
	return false
}

// ValidateVotingWindow checks status and schedule at instant now.
func ValidateVotingWindow(e *Election, now time.Time) (bool, string) {
	if e.Status != StatusPublished {
		switch e.Status {
		case StatusDraft:
			return false, "election is not yet published"
		case StatusClosed:
			return false, "election has closed"
		case StatusPaused:
			return false, "election is temporarily paused"
		case StatusArchived:
			return false, "election is archived"
		default:
			return false, "election is not active"
		}
	}
	if e.ScheduledStart != nil && now.Before(*e.ScheduledStart) {
		return false, "election has not started yet"
	}
	if e.ScheduledEnd != nil && now.After(*e.ScheduledEnd) {
		return false, "election has ended"
	}
	return true, ""
}

// ResultsVisible is the default results policy: admins always, everyone else once voting has ended.
func ResultsVisible(e *Election, roles Roles) bool {
	return roles.IsAdmin() || e.Status.Ended()
}
