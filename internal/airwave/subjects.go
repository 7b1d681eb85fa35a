package airwave

const (
	SubjectReadingRequest = "airlens.reading.request"
	SubjectSensorOnline   = "airlens.sensor.*.online"
	SubjectSensorOffline  = "airlens.sensor.*.offline"
	SubjectEngineStats    = "airlens.engine.stats"

	StreamName   = "AIRLENS_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectReadingIngested(readingID string) string { return "airlens.reading." + readingID + ".ingested" }

func SubjectScoreComputed(userID string) string  { return "airlens.score." + userID + ".computed" }
func SubjectScoreRefreshed(userID string) string { return "airlens.score." + userID + ".refreshed" }
func SubjectScoreExpired(userID string) string   { return "airlens.score." + userID + ".expired" }

func SubjectAlertRaised(userID string) string  { return "airlens.alert." + userID + ".raised" }
func SubjectAlertCleared(userID string) string { return "airlens.alert." + userID + ".cleared" }

func SubjectForecastIssued(userID string) string { return "airlens.forecast." + userID + ".issued" }
