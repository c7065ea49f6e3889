package tracker

import "github.com/tmeadows/sitebudget/internal/models"

// Decision is the outcome of one threshold evaluation.
type Decision struct {
	Reminder     bool
	ReminderText string
	LimitReached bool
}

// Evaluate is the pure threshold check run after every accrual write
// and after every settings change that alters the limit. Both checks
// use a strict crossing (prev < threshold <= next) so a replayed or
// delayed evaluation of the same pair cannot fire twice, and so a
// threshold only re-arms once accumulated time falls below it again
// (e.g. after a rerun).
//
// The reminder is evaluated first: it is informational, the limit is
// enforcement, and when both cross in one step the reminder should be
// delivered ahead of the blocking notification.
func Evaluate(prev, next int64, site models.Site) Decision {
	var d Decision

	// Schedule-only sites have no budget to evaluate.
	limit := site.EffectiveLimitMs()
	if limit <= 0 {
		return d
	}

	if site.Reminder != nil {
		threshold := limit * int64(site.Reminder.Percentage) / 100
		if prev < threshold && threshold <= next {
			d.Reminder = true
			d.ReminderText = site.Reminder.Text
		}
	}

	if prev < limit && limit <= next {
		d.LimitReached = true
	}

	return d
}
