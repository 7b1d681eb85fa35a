// Package alert decides when a newly computed score warrants notifying the
// user and publishes the resulting alert events.
package alert

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/airlens/airlens/internal/airwave"
	"github.com/airlens/airlens/internal/health"
	"github.com/airlens/airlens/internal/observability"
)

// Notification priority levels.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// Notifier evaluates score transitions and raises alerts over the event bus.
type Notifier struct {
	bus    airwave.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewNotifier(bus airwave.Client, logger *slog.Logger) *Notifier {
	return &Notifier{bus: bus, logger: logger, now: time.Now}
}

// categoryRank orders risk categories for transition comparison.
func categoryRank(c health.RiskCategory) int {
	switch c {
	case health.RiskCritical:
		return 3
	case health.RiskHigh:
		return 2
	case health.RiskMedium:
		return 1
	default:
		return 0
	}
}

// PriorityFor maps a risk category and AQI to a notification priority.
// Critical risk is always urgent; AQI above 150 escalates to high.
func PriorityFor(category health.RiskCategory, aqi int) string {
	switch {
	case category == health.RiskCritical:
		return PriorityUrgent
	case category == health.RiskHigh || aqi > 150:
		return PriorityHigh
	case category == health.RiskMedium:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// Evaluate compares the new result against the previous one and publishes an
// alert when the risk category worsened, or a clear event when it dropped
// back to low. Unchanged or improving-but-still-elevated categories stay
// quiet to avoid notification fatigue.
func (n *Notifier) Evaluate(userID string, prev, current *health.ScoreResult, aqi int) {
	if current == nil || n.bus == nil {
		return
	}
	var prevCat health.RiskCategory
	if prev != nil {
		prevCat = prev.RiskCategory
	}

	curRank := categoryRank(current.RiskCategory)
	prevRank := categoryRank(prevCat)

	switch {
	case curRank > prevRank:
		event := airwave.AlertEvent{
			UserID:       userID,
			Priority:     PriorityFor(current.RiskCategory, aqi),
			RiskCategory: current.RiskCategory,
			Previous:     prevCat,
			AQI:          aqi,
			Message:      alertMessage(current.RiskCategory, aqi),
			Timestamp:    n.now(),
		}
		if err := n.bus.Publish(airwave.SubjectAlertRaised(userID), event); err != nil {
			n.logger.Error("failed to publish alert", "user_id", userID, "error", err)
			return
		}
		observability.RecordAlertRaised(event.Priority)
		n.logger.Info("alert raised",
			"user_id", userID,
			"category", current.RiskCategory,
			"previous", prevCat,
			"priority", event.Priority)

	case prev != nil && prevRank > 0 && curRank == 0:
		event := airwave.AlertEvent{
			UserID:       userID,
			Priority:     PriorityLow,
			RiskCategory: current.RiskCategory,
			Previous:     prevCat,
			AQI:          aqi,
			Message:      "Your health risk has returned to low.",
			Timestamp:    n.now(),
		}
		if err := n.bus.Publish(airwave.SubjectAlertCleared(userID), event); err != nil {
			n.logger.Error("failed to publish alert clear", "user_id", userID, "error", err)
		}
	}
}

func alertMessage(category health.RiskCategory, aqi int) string {
	switch category {
	case health.RiskCritical:
		return fmt.Sprintf("Critical health risk: air quality (AQI %d) poses a serious danger given your health profile. Stay indoors and follow your recommendations.", aqi)
	case health.RiskHigh:
		return fmt.Sprintf("High health risk: current air quality (AQI %d) is likely to affect you. Limit outdoor exposure.", aqi)
	default:
		return fmt.Sprintf("Your health risk has increased (AQI %d). Check your recommendations.", aqi)
	}
}
