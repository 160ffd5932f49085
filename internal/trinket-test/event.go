package trinkettest

import (
	"time"

	"github.com/TheCacophonyProject/event-reporter/v3/eventclient"
)

const eventType = "trinketSmokeTest"

var addEvent = eventclient.AddEvent

func makeEvent(report *Report, testErr error) eventclient.Event {
	details := map[string]interface{}{
		"success": testErr == nil && report != nil && report.BannerMatched,
	}
	if report != nil {
		details["bannerMatched"] = report.BannerMatched
		details["exchanges"] = len(report.Exchanges)
	}
	if testErr != nil {
		details["error"] = testErr.Error()
	}
	return eventclient.Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Details:   details,
	}
}

func reportEvent(report *Report, testErr error) {
	if err := addEvent(makeEvent(report, testErr)); err != nil {
		log.Errorf("Failed to add %s event: %v", eventType, err)
	}
}
